package otp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestService_Issue(t *testing.T) {
	t.Run("IssuesCodesOfConfiguredLength", func(t *testing.T) {
		svc := NewService(8)
		for i := 0; i < 20; i++ {
			code := svc.Issue()
			assert.Len(t, code, 8)
			for _, r := range code {
				assert.True(t, strings.ContainsRune(charset, r), "unexpected character %q", r)
			}
		}
	})

	t.Run("FallsBackOnBadLength", func(t *testing.T) {
		svc := NewService(0)
		assert.Len(t, svc.Issue(), 6)
	})
}

func TestService_Verify(t *testing.T) {
	svc := NewService(6)
	code := svc.Issue()

	assert.True(t, svc.Verify(code, code))
	assert.False(t, svc.Verify(code, code+"x"))
	assert.False(t, svc.Verify(code, ""))
	assert.False(t, svc.Verify("ABC123", "abc123"))
}
