package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorTypes(t *testing.T) {
	t.Run("not found survives wrapping", func(t *testing.T) {
		err := fmt.Errorf("failed to load product: %w", NotFound("product", int64(42)))

		var nf *NotFoundError
		require.True(t, errors.As(err, &nf))
		assert.Equal(t, "product", nf.Resource)
		assert.Equal(t, "42", nf.ID)
		assert.True(t, IsNotFound(err))
		assert.Equal(t, "failed to load product: product 42 not found", err.Error())
	})

	t.Run("conflict is matched by field", func(t *testing.T) {
		err := Conflict("product", "upc", "100000000001")

		assert.True(t, IsConflictOn(err, "upc"))
		assert.False(t, IsConflictOn(err, "name"))
		assert.False(t, IsNotFound(err))
		assert.Contains(t, err.Error(), "already exists")
	})

	t.Run("upstream unwraps to the cause", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := Upstream("postgres", "insert product", cause)

		assert.ErrorIs(t, err, cause)
		assert.Equal(t, "postgres: failed to insert product: connection reset", err.Error())
		assert.Nil(t, Upstream("postgres", "noop", nil))
	})

	t.Run("validation carries field", func(t *testing.T) {
		err := Validation("prompt", "must not be empty")

		var ve *ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, "prompt", ve.Field)
	})
}
