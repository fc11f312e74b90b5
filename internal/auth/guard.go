package auth

import (
	"github.com/bwmarrin/snowflake"

	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/user/entity"
)

// Owned is implemented by records carrying an immutable creator reference.
// OwnerID must be nil-receiver safe and return 0 when the owner is unknown.
type Owned interface {
	OwnerID() snowflake.ID
}

// Authorize fails with Forbidden unless identity owns res. It never touches the
// store; an unpopulated owner or identity never matches.
func Authorize(identity *entity.User, res Owned) error {
	if identity == nil || res == nil {
		return apperr.Forbidden("you are not allowed to modify this resource")
	}
	if !sameOwner(res.OwnerID(), identity.ID) {
		return apperr.Forbidden("you are not allowed to modify this resource")
	}
	return nil
}

func sameOwner(owner, id snowflake.ID) bool {
	return owner > 0 && owner == id
}
