package model

type Category struct {
	ID   string
	Name string
}
