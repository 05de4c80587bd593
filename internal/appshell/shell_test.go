package appshell

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun_PassesArgsAndCode(t *testing.T) {
	var got []string
	code := Run(context.Background(), []string{"build", "-h"}, io.Discard, io.Discard,
		func(_ context.Context, argv []string, _, _ io.Writer) int {
			got = argv
			return 1
		})
	assert.Equal(t, 1, code)
	assert.Equal(t, []string{"build", "-h"}, got)
}

func TestRun_CanceledSuccessBecomes130(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	code := Run(ctx, nil, io.Discard, io.Discard,
		func(context.Context, []string, io.Writer, io.Writer) int { return 0 })
	assert.Equal(t, 130, code)
}
