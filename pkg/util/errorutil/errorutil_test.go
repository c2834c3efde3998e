package errorutil

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestToDomainError(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))
	assert.NoError(t, MapError(nil))

	conflict := NewConflict("ticket number already exists", map[string]any{"ticket_number": "1"})
	assert.Same(t, conflict, ToDomainError(fmt.Errorf("wrapped: %w", conflict)))

	assert.Equal(t, CodeNotFound, ToDomainError(gorm.ErrRecordNotFound).Code)
	assert.Equal(t, CodeConflict, ToDomainError(gorm.ErrDuplicatedKey).Code)

	disk := errors.New("disk I/O error")
	mapped := ToDomainError(disk)
	assert.Equal(t, CodeInternal, mapped.Code)
	assert.ErrorIs(t, mapped, disk)
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("remove: %w", NewNotFound("staff member", nil))
	assert.True(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(err, CodeConflict))
	assert.False(t, HasCode(errors.New("plain"), CodeNotFound))
}

func TestWorkbookErrorMessage(t *testing.T) {
	err := NewWorkbookError("failed to upload data", errors.New("zip: not a valid zip file"))
	assert.Equal(t, "failed to upload data: zip: not a valid zip file", err.Error())
	assert.True(t, HasCode(err, CodeWorkbook))
}
