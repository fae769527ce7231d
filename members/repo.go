package members

import "errors"

var ErrMemberNotFound = errors.New("member not found")

type Repo interface {
	Upsert(member *Member) error
	GetByID(id int64) (*Member, error)
	GetByLoginID(loginID string) (*Member, error)
	List(offset, limit int) ([]*Member, error)
}
