package returncodes

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v2"

	"github.com/evote-ccr/control-component/model/ccr"
	"github.com/evote-ccr/control-component/module/exactlyonce"
	"github.com/evote-ccr/control-component/module/lock"
	"github.com/evote-ccr/control-component/module/metrics"
	"github.com/evote-ccr/control-component/module/returncodes"
	"github.com/evote-ccr/control-component/module/signature"
	"github.com/evote-ccr/control-component/network/codec"
	"github.com/evote-ccr/control-component/storage"
)

// classify maps a handling error to the rejection category reported to the
// sender and in the metrics.
func classify(err error) string {
	switch {
	case exactlyonce.IsConflictError(err):
		return metrics.CategoryConflict
	case codec.IsCodecError(err):
		return metrics.CategoryCodec
	case errors.Is(err, signature.ErrUnknownSigner), errors.Is(err, signature.ErrInvalidSignature):
		return metrics.CategoryValidation
	case errors.Is(err, lock.ErrLockTimeout), errors.Is(err, badger.ErrConflict):
		return metrics.CategoryTransient
	default:
		return returncodes.Category(err)
	}
}

// unknownAsInvalid turns the absence of provisioned data into a validation
// error of the request referring to it.
func unknownAsInvalid(err error, what string, id string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return ccr.NewValidationErrorf("unknown %s %s", what, id)
	}
	return fmt.Errorf("could not load %s %s: %w", what, id, err)
}
