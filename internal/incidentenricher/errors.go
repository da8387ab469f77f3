package incidentenricher

import "errors"

var errNoGenerator = errors.New("incidentenricher: no LLM generator configured")
