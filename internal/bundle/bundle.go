// Package bundle reads and writes the portable transmission file format:
// the transmission's JSON document, gzip-compressed. Bundles exported here
// import cleanly, and so do plain archive documents compressed by hand.
package bundle

import (
	"compress/gzip"
	"encoding/json"
	"io"

	"github.com/ruliana/technoir-transmission-generator/internal/errors"
	"github.com/ruliana/technoir-transmission-generator/internal/models"
)

// ErrMalformedBundle is returned when a file is not a gzip-compressed
// transmission document.
var ErrMalformedBundle = errors.NewSentinel("not a transmission bundle")

func Export(tx *models.Transmission, w io.Writer) error {
	zw := gzip.NewWriter(w)
	if err := json.NewEncoder(zw).Encode(tx); err != nil {
		return errors.Wrap(err, "encode transmission bundle")
	}
	if err := zw.Close(); err != nil {
		return errors.Wrap(err, "flush transmission bundle")
	}
	return nil
}

func Import(r io.Reader) (*models.Transmission, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, errors.Wrap(ErrMalformedBundle, err.Error())
	}
	defer zr.Close()

	var tx models.Transmission
	if err := json.NewDecoder(zr).Decode(&tx); err != nil {
		return nil, errors.Wrap(ErrMalformedBundle, err.Error())
	}
	if tx.ID == 0 || tx.Title == "" {
		return nil, errors.Wrap(ErrMalformedBundle, "missing id or title")
	}
	return &tx, nil
}
