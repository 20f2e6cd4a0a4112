package alerter

import "github.com/forumjet/alertmux/model"

// userSet tracks users by id so membership checks and set algebra stay
// O(1) per user even after large allowed-group expansions.
type userSet struct {
	users map[string]*model.User
}

func newUserSet(users ...*model.User) *userSet {
	s := &userSet{users: make(map[string]*model.User)}
	for _, u := range users {
		s.add(u)
	}
	return s
}

func (s *userSet) add(u *model.User) {
	if u == nil || u.Id == "" {
		return
	}
	s.users[u.Id] = u
}

func (s *userSet) addAll(users []*model.User) {
	for _, u := range users {
		s.add(u)
	}
}

func (s *userSet) contains(id string) bool {
	_, ok := s.users[id]
	return ok
}

func (s *userSet) ids() []string {
	ids := make([]string, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	return ids
}

// subtractUsers returns the users not present in the set, preserving the
// input order.
func subtractUsers(users []*model.User, set *userSet) []*model.User {
	res := make([]*model.User, 0, len(users))
	for _, u := range users {
		if u == nil || set.contains(u.Id) {
			continue
		}
		res = append(res, u)
	}
	return res
}

// intersectUsers returns the users present in the set, preserving the
// input order.
func intersectUsers(users []*model.User, set *userSet) []*model.User {
	res := make([]*model.User, 0, len(users))
	for _, u := range users {
		if u == nil || !set.contains(u.Id) {
			continue
		}
		res = append(res, u)
	}
	return res
}
