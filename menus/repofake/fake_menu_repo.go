package menurepofake

import (
	"sort"
	"sync"

	"github.com/jrsteele09/go-asset-console/menus"
)

var _ menus.Repo = (*FakeMenuRepo)(nil)

type FakeMenuRepo struct {
	menus     map[int64]*menus.Menu
	roles     map[int64]*menus.Role
	roleCodes map[string]int64
	grants    map[int64][]*menus.RoleMenu // role id to grant rows
	nextMenu  int64
	nextRole  int64
	lock      sync.RWMutex
}

func NewFakeMenuRepo() menus.Repo {
	return &FakeMenuRepo{
		menus:     make(map[int64]*menus.Menu),
		roles:     make(map[int64]*menus.Role),
		roleCodes: make(map[string]int64),
		grants:    make(map[int64][]*menus.RoleMenu),
	}
}

func (mr *FakeMenuRepo) UpsertMenu(menu *menus.Menu) error {
	mr.lock.Lock()
	defer mr.lock.Unlock()

	if menu.ID == 0 {
		mr.nextMenu++
		menu.ID = mr.nextMenu
	} else if menu.ID > mr.nextMenu {
		mr.nextMenu = menu.ID
	}
	stored := *menu
	mr.menus[menu.ID] = &stored
	return nil
}

func (mr *FakeMenuRepo) GetMenu(id int64) (*menus.Menu, error) {
	mr.lock.RLock()
	defer mr.lock.RUnlock()

	m, ok := mr.menus[id]
	if !ok {
		return nil, menus.ErrMenuNotFound
	}
	c := *m
	return &c, nil
}

func (mr *FakeMenuRepo) ListMenus() ([]*menus.Menu, error) {
	mr.lock.RLock()
	defer mr.lock.RUnlock()

	list := make([]*menus.Menu, 0, len(mr.menus))
	for _, m := range mr.menus {
		c := *m
		list = append(list, &c)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})
	return list, nil
}

func (mr *FakeMenuRepo) UpsertRole(role *menus.Role) error {
	mr.lock.Lock()
	defer mr.lock.Unlock()

	if role.ID == 0 {
		mr.nextRole++
		role.ID = mr.nextRole
	} else if role.ID > mr.nextRole {
		mr.nextRole = role.ID
	}
	stored := *role
	mr.roles[role.ID] = &stored
	mr.roleCodes[role.Code] = role.ID
	return nil
}

func (mr *FakeMenuRepo) GetRole(id int64) (*menus.Role, error) {
	mr.lock.RLock()
	defer mr.lock.RUnlock()

	r, ok := mr.roles[id]
	if !ok {
		return nil, menus.ErrRoleNotFound
	}
	c := *r
	return &c, nil
}

func (mr *FakeMenuRepo) GetRoleByCode(code string) (*menus.Role, error) {
	mr.lock.RLock()
	id, ok := mr.roleCodes[code]
	mr.lock.RUnlock()
	if !ok {
		return nil, menus.ErrRoleNotFound
	}
	return mr.GetRole(id)
}

func (mr *FakeMenuRepo) ListRoles() ([]*menus.Role, error) {
	mr.lock.RLock()
	defer mr.lock.RUnlock()

	list := make([]*menus.Role, 0, len(mr.roles))
	for _, r := range mr.roles {
		c := *r
		list = append(list, &c)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})
	return list, nil
}

func (mr *FakeMenuRepo) RoleMenus(roleID int64) ([]*menus.RoleMenu, error) {
	mr.lock.RLock()
	defer mr.lock.RUnlock()

	rows := make([]*menus.RoleMenu, 0, len(mr.grants[roleID]))
	for _, rm := range mr.grants[roleID] {
		c := *rm
		rows = append(rows, &c)
	}
	return rows, nil
}

func (mr *FakeMenuRepo) ReplaceRoleMenus(roleID int64, rows []*menus.RoleMenu) error {
	mr.lock.Lock()
	defer mr.lock.Unlock()

	if _, ok := mr.roles[roleID]; !ok {
		return menus.ErrRoleNotFound
	}
	stored := make([]*menus.RoleMenu, 0, len(rows))
	for _, rm := range rows {
		c := *rm
		c.RoleID = roleID
		stored = append(stored, &c)
	}
	mr.grants[roleID] = stored
	return nil
}
