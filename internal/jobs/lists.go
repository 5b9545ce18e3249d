package jobs

import (
	"fmt"
	"log/slog"

	"dionysia/internal/logging"
	"dionysia/internal/services"
)

const collectionExample = `[collections.%s]
agent = "json"
url = "[JSON URL]"`

const externalListExample = `[external_lists.%s]
user = "[Trakt List Username]"
list_id = "[Trakt List ID]"
feed_url = "[JSON URL]"`

// unknownList logs how to define a missing list and returns the matching error.
func unknownList(logger *slog.Logger, section, name, example string) error {
	snippet := fmt.Sprintf(example, name)
	logging.ErrorWithContext(logger, "list is not defined in the configuration file", "configuration_error",
		logging.String(logging.FieldList, name),
		logging.String("example", snippet),
		logging.String(logging.FieldErrorHint, fmt.Sprintf("add a [%s.%s] table to the configuration file", section, name)),
	)
	return services.Wrap(services.ErrConfiguration, section, name, "not defined in the configuration file", nil)
}
