package models

type Usuario struct {
	FirebaseUID string `json:"firebase_uid"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Password    string `json:"password,omitempty"`
}
