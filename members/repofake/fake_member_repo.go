package memberrepofake

import (
	"sort"
	"sync"

	"github.com/jrsteele09/go-asset-console/members"
)

var _ members.Repo = (*FakeMemberRepo)(nil)

type FakeMemberRepo struct {
	members  map[int64]*members.Member
	loginIDs map[string]int64 // login id to member id
	nextID   int64
	lock     sync.RWMutex
}

func NewFakeMemberRepo() members.Repo {
	return &FakeMemberRepo{
		members:  make(map[int64]*members.Member),
		loginIDs: make(map[string]int64),
	}
}

func (mr *FakeMemberRepo) Upsert(member *members.Member) error {
	mr.lock.Lock()
	defer mr.lock.Unlock()

	if member.ID == 0 {
		mr.nextID++
		member.ID = mr.nextID
	} else if member.ID > mr.nextID {
		mr.nextID = member.ID
	}
	stored := *member
	mr.members[member.ID] = &stored
	mr.loginIDs[member.LoginID] = member.ID
	return nil
}

func (mr *FakeMemberRepo) GetByID(id int64) (*members.Member, error) {
	mr.lock.RLock()
	defer mr.lock.RUnlock()

	m, ok := mr.members[id]
	if !ok {
		return nil, members.ErrMemberNotFound
	}
	c := *m
	return &c, nil
}

func (mr *FakeMemberRepo) GetByLoginID(loginID string) (*members.Member, error) {
	mr.lock.RLock()
	id, ok := mr.loginIDs[loginID]
	mr.lock.RUnlock()
	if !ok {
		return nil, members.ErrMemberNotFound
	}
	return mr.GetByID(id)
}

func (mr *FakeMemberRepo) List(offset, limit int) ([]*members.Member, error) {
	mr.lock.RLock()
	defer mr.lock.RUnlock()

	list := make([]*members.Member, 0, len(mr.members))
	for _, m := range mr.members {
		c := *m
		list = append(list, &c)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})

	if offset >= len(list) {
		return nil, nil
	}
	end := len(list)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return list[offset:end], nil
}
