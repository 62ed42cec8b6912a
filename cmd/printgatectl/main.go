// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Command printgatectl administers a digest password file: adding, removing,
// and listing the (user, group, hash) entries Digest and BasicDigest
// credential verification reads.
package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/term"

	"grimm.is/printgate/internal/credential"
	"grimm.is/printgate/internal/digest"
)

func main() {
	passwdPath := flag.String("passwd", "/etc/printgate/passwd.md5", "path to the digest password file")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	var err error
	switch args[0] {
	case "add":
		err = runAdd(*passwdPath, args[1:])
	case "remove":
		err = runRemove(*passwdPath, args[1:])
	case "list":
		err = runList(*passwdPath, args[1:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "printgatectl:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: printgatectl [-passwd path] <command> [args]

commands:
  add <user> <group>      add or update a digest password entry
  remove <user> <group>   remove a digest password entry
  list                    list all entries`)
}

func runAdd(path string, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("add requires <user> <group>")
	}
	user, group := args[0], args[1]

	password, err := promptPassword()
	if err != nil {
		return err
	}
	if err := credential.ValidatePassword(password, credential.DefaultPasswordPolicy(), user); err != nil {
		return err
	}

	store := digest.NewStore()
	if err := loadIfExists(store, path); err != nil {
		return err
	}

	store.SetEntry(user, group, credential.DigestFileHash(user, password))
	return store.Save(path)
}

func runRemove(path string, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("remove requires <user> <group>")
	}
	user, group := args[0], args[1]

	store := digest.NewStore()
	if err := store.Load(path); err != nil {
		return err
	}
	if !store.RemoveEntry(user, group) {
		return fmt.Errorf("no entry for %s:%s", user, group)
	}
	return store.Save(path)
}

func runList(path string, args []string) error {
	store := digest.NewStore()
	if err := store.Load(path); err != nil {
		return err
	}
	store.Each(func(user, group, hash string) {
		fmt.Printf("%s:%s:%s\n", user, group, hash)
	})
	return nil
}

func loadIfExists(store *digest.Store, path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return store.Load(path)
}

func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}
