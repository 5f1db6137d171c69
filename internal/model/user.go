package model

type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Age      int    `json:"age"`
	Email    string `json:"email"`
	Password string `json:"-"`
}
