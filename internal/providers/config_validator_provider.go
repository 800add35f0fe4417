package providers

import (
	"errors"
	"fmt"

	"github.com/gookit/validate"

	"guildstore/internal/structures"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

func (cv *CnfValidator) Validate() error {
	v := validate.Struct(cv.conf)
	if !v.Validate() {
		return fmt.Errorf("invalid config: %w", v.Errors)
	}

	switch cv.conf.Storage.Backend {
	case "file", "sqlite":
		if cv.conf.Storage.Dir == "" {
			return fmt.Errorf("invalid config: storage.dir is required for the %s backend", cv.conf.Storage.Backend)
		}
	}
	if cv.conf.Storage.Watch && cv.conf.Storage.Backend != "file" {
		return errors.New("invalid config: storage.watch requires the file backend")
	}
	if cv.conf.Notifier.Enabled && cv.conf.Notifier.URL == "" {
		return errors.New("invalid config: notifier.url is required when the notifier is enabled")
	}
	return nil
}
