package member

import (
	"errors"

	"gorm.io/gorm"

	domainMember "coop-lending-engine/internal/domain/member"
)

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, domainMember.ErrNotFound)
}
