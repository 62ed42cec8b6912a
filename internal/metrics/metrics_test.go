// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordDecisionIncrementsCounter(t *testing.T) {
	before := testutil.ToFloat64(Decisions.WithLabelValues("ok", "/admin/"))
	RecordDecision("ok", "/admin/")
	after := testutil.ToFloat64(Decisions.WithLabelValues("ok", "/admin/"))

	assert.Equal(t, before+1, after)
}
