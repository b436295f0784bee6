package game

import "github.com/google/uuid"

type UniqueIdGenerator interface {
	Generate() string
}

type uuidGen struct{}

func (uuidGen) Generate() string {
	return uuid.NewString()
}

func NewIdGen() UniqueIdGenerator {
	return uuidGen{}
}
