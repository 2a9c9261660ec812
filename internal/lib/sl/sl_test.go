package sl_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/subscription-calendar/internal/lib/sl"
)

func TestErr_ReturnsCorrectAttr(t *testing.T) {
	err := errors.New("something went wrong")
	attr := sl.Err(err)

	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, slog.StringValue("something went wrong"), attr.Value)
}

func TestErr_NilError(t *testing.T) {
	assert.Panics(t, func() {
		_ = sl.Err(nil)
	})
}

func TestDay(t *testing.T) {
	attr := sl.Day("today", time.Date(2025, 10, 17, 23, 59, 0, 0, time.UTC))

	assert.Equal(t, "today", attr.Key)
	assert.Equal(t, "2025-10-17", attr.Value.String())
}
