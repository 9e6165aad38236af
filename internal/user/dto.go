package user

type UsersResponse struct {
	Users []*User `json:"users"`
}
