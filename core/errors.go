package core

import "fmt"

// ErrorKind is the stable, language-neutral classification of a core error.
// Callers should switch on Kind rather than on error strings.
type ErrorKind string

const (
	ErrKindAccess     ErrorKind = "access"
	ErrKindIntegrity  ErrorKind = "integrity"
	ErrKindStructural ErrorKind = "structural"
	ErrKindResource   ErrorKind = "resource"
	ErrKindCrypto     ErrorKind = "crypto"
	ErrKindFEC        ErrorKind = "fec"
	ErrKindInput      ErrorKind = "input"
)

// Error is the error type returned by every core operation. Kind is a stable
// enum value; I18nKey identifies a message template a translation layer can
// key off of; Params carries the named substitutions for that template.
// Translation tables themselves are out of scope for this module.
type Error struct {
	Kind    ErrorKind
	I18nKey string
	Params  map[string]string
	cause   error
}

func (e *Error) Error() string {
	if len(e.Params) == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.I18nKey)
	}
	return fmt.Sprintf("%s: %s %v", e.Kind, e.I18nKey, e.Params)
}

func (e *Error) Unwrap() error { return e.cause }

// Is reports whether target is a sentinel error of the same Kind and
// I18nKey, so errors.Is matches across withParams' copies regardless of
// their Params or wrapped cause.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind && e.I18nKey == other.I18nKey
}

func newErr(kind ErrorKind, key string, params map[string]string) *Error {
	return &Error{Kind: kind, I18nKey: key, Params: params}
}

func wrapErr(kind ErrorKind, key string, cause error, params map[string]string) *Error {
	e := newErr(kind, key, params)
	e.cause = cause
	return e
}

// Sentinel errors for the taxonomy named in spec.md §7. Each is a distinct
// *Error value so callers can compare with errors.Is.
var (
	ErrBlockNotReadable       = newErr(ErrKindAccess, "block.not_readable", nil)
	ErrBlockNotPersistable    = newErr(ErrKindAccess, "block.not_persistable", nil)
	ErrDataExceedsBlockSize   = newErr(ErrKindAccess, "block.data_exceeds_size", nil)
	ErrChecksumMismatch       = newErr(ErrKindIntegrity, "block.checksum_mismatch", nil)
	ErrInvalidStructure       = newErr(ErrKindIntegrity, "cbl.invalid_structure", nil)
	ErrCreatorIDMismatch      = newErr(ErrKindIntegrity, "cbl.creator_id_mismatch", nil)
	ErrInvalidSignature       = newErr(ErrKindIntegrity, "cbl.invalid_signature", nil)
	ErrXorAtLeastOneRequired  = newErr(ErrKindStructural, "xor.at_least_one_required", nil)
	ErrXorLengthMismatch      = newErr(ErrKindStructural, "xor.length_mismatch", nil)
	ErrInvalidTupleCount      = newErr(ErrKindStructural, "tuple.invalid_count", nil)
	ErrBlockSizeMismatch      = newErr(ErrKindStructural, "tuple.block_size_mismatch", nil)
	ErrPoolIDMismatch         = newErr(ErrKindStructural, "tuple.pool_id_mismatch", nil)
	ErrFailedToGetRandom      = newErr(ErrKindResource, "pool.no_random_block", nil)
	ErrFailedToGetWhitener    = newErr(ErrKindResource, "pool.no_whitening_block", nil)
	ErrDecryptionFailed       = newErr(ErrKindCrypto, "encryption.decryption_failed", nil)
	ErrBlockNotEncrypted      = newErr(ErrKindCrypto, "encryption.not_encrypted", nil)
	ErrInvalidPublicKey       = newErr(ErrKindCrypto, "encryption.invalid_public_key", nil)
	ErrMissingParameters      = newErr(ErrKindInput, "tuple_service.missing_parameters", nil)
	ErrFecDataRequired        = newErr(ErrKindFEC, "fec.data_required", nil)
	ErrFecInvalidDataLength   = newErr(ErrKindFEC, "fec.invalid_data_length", nil)
	ErrFecShardSizeExceeded   = newErr(ErrKindFEC, "fec.shard_size_exceeds_maximum", nil)
	ErrFecNotEnoughShards     = newErr(ErrKindFEC, "fec.not_enough_shards_available", nil)
	ErrFecEncodingFailed      = newErr(ErrKindFEC, "fec.encoding_failed", nil)
	ErrFecDecodingFailed      = newErr(ErrKindFEC, "fec.decoding_failed", nil)
)

// withParams returns a copy of sentinel err with Params set, preserving Kind
// and I18nKey. Used at call sites that need to fill in {LENGTH}, {EXPECTED},
// {GUID}, etc.
func withParams(sentinel *Error, params map[string]string) *Error {
	return &Error{Kind: sentinel.Kind, I18nKey: sentinel.I18nKey, Params: params, cause: sentinel.cause}
}
