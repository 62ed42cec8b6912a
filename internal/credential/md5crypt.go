// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package credential

import (
	"crypto/md5"
	"strings"
)

// md5CryptVerify checks password against a "$1$salt$hash" style crypt
// string, the MD5-based scheme the shadow/crypt backend falls back to when
// the stored hash isn't bcrypt. This is the well-known FreeBSD MD5 crypt
// algorithm, implemented directly since it has no package in the standard
// library or a crypto module.
func md5CryptVerify(password, stored string) bool {
	if !strings.HasPrefix(stored, "$1$") {
		return false
	}

	rest := stored[len("$1$"):]
	end := strings.IndexByte(rest, '$')
	if end < 0 {
		return false
	}
	salt := rest[:end]

	return md5Crypt(password, salt) == stored
}

const md5CryptItoa64 = "./0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

func md5Crypt(password, salt string) string {
	if len(salt) > 8 {
		salt = salt[:8]
	}

	h1 := md5.New()
	h1.Write([]byte(password))
	h1.Write([]byte("$1$"))
	h1.Write([]byte(salt))

	h2 := md5.New()
	h2.Write([]byte(password))
	h2.Write([]byte(salt))
	h2.Write([]byte(password))
	alt := h2.Sum(nil)

	for i := len(password); i > 0; i -= 16 {
		n := i
		if n > 16 {
			n = 16
		}
		h1.Write(alt[:n])
	}

	for i := len(password); i != 0; i >>= 1 {
		if i&1 != 0 {
			h1.Write([]byte{0})
		} else {
			h1.Write([]byte(password[:1]))
		}
	}

	digest := h1.Sum(nil)

	for round := 0; round < 1000; round++ {
		h := md5.New()
		if round&1 != 0 {
			h.Write([]byte(password))
		} else {
			h.Write(digest)
		}
		if round%3 != 0 {
			h.Write([]byte(salt))
		}
		if round%7 != 0 {
			h.Write([]byte(password))
		}
		if round&1 != 0 {
			h.Write(digest)
		} else {
			h.Write([]byte(password))
		}
		digest = h.Sum(nil)
	}

	var out strings.Builder
	out.WriteString("$1$")
	out.WriteString(salt)
	out.WriteByte('$')

	to64 := func(v uint32, n int) {
		for ; n > 0; n-- {
			out.WriteByte(md5CryptItoa64[v&0x3f])
			v >>= 6
		}
	}

	triples := [][3]int{{0, 6, 12}, {1, 7, 13}, {2, 8, 14}, {3, 9, 15}, {4, 10, 5}}
	for _, t := range triples {
		v := uint32(digest[t[0]])<<16 | uint32(digest[t[1]])<<8 | uint32(digest[t[2]])
		to64(v, 4)
	}
	to64(uint32(digest[11]), 2)

	return out.String()
}
