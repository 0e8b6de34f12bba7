package emailsvc

import (
	"log"

	"github.com/cambria/academy/core"
)

// NewEmailService sends through SendGrid when an API key is configured and prints to std otherwise.
func NewEmailService(std *log.Logger, conf *core.Config, logger core.Logger) core.EmailService {
	if conf.SendgridApiKey == "" || conf.TestMode {
		return NewConsoleService(std, conf)
	}
	return NewSendgridService(conf, logger)
}
