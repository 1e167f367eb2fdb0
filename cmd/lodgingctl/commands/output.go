package commands

import (
	"encoding/json"
	"io"

	"github.com/rs/zerolog/log"

	apperrors "github.com/hbnb/lodging-core/pkg/errors"
)

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// committed treats a stale rating as success: the write went through and the
// derived average catches up on the next review change.
func committed(err error) error {
	if apperrors.IsStale(err) {
		log.Warn().Err(err).Msg("write committed but place rating is stale")
		return nil
	}
	return err
}
