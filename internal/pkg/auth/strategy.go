package auth

import (
	"time"

	"github.com/milkway/milkway/internal/domain/model"
)

type Strategy interface {
	IssueToken(ident model.Identity) (string, error)
	ParseToken(token string) (model.Identity, error)
	Name() string
}

type Options struct {
	TTL time.Duration
}
