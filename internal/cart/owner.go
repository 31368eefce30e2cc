package cart

import "strconv"

// Owner identifies who a cart belongs to: an authenticated user or an
// anonymous session, never both. It is passed explicitly into every cart
// operation instead of being read from ambient request state.
type Owner struct {
	UserID    uint
	SessionID string
}

func UserOwner(id uint) Owner { return Owner{UserID: id} }

func SessionOwner(token string) Owner { return Owner{SessionID: token} }

// ResolveOwner picks the identity a cart mutation runs under. An
// authenticated user always wins over the session token.
func ResolveOwner(userID uint, sessionToken string) (Owner, error) {
	if userID != 0 {
		return UserOwner(userID), nil
	}
	if sessionToken != "" {
		return SessionOwner(sessionToken), nil
	}
	return Owner{}, ErrNoOwner
}

func (o Owner) Valid() bool { return o.UserID != 0 || o.SessionID != "" }

// Key is the scalar the storage layer scopes cart rows by. It is NOT NULL
// in the schema so the (owner, product, size, color) unique index holds for
// anonymous carts too.
func (o Owner) Key() string {
	if o.UserID != 0 {
		return "user:" + strconv.FormatUint(uint64(o.UserID), 10)
	}
	return "session:" + o.SessionID
}

func (o Owner) userIDPtr() *uint {
	if o.UserID == 0 {
		return nil
	}
	id := o.UserID
	return &id
}

func (o Owner) sessionIDPtr() *string {
	if o.UserID != 0 || o.SessionID == "" {
		return nil
	}
	s := o.SessionID
	return &s
}
