package metrics

const (
	LabelResource = "resource"
	LabelContext  = "context"
	LabelStep     = "step"
	LabelCategory = "category"
	LabelLock     = "lock"
	EngineLabel   = "engine"
	LabelMessage  = "message"
	LabelService  = "service"
	LabelHandler  = "handler"
	LabelMethod   = "method"
	LabelCode     = "code"
)

const (
	ResourceElectionEvent       = "election_event"
	ResourceVerificationCardSet = "verification_card_set"
	ResourceNodeKeys            = "node_keys"
)

const (
	StepVerifyBallot    = "verify_ballot_ccr"
	StepPartialDecrypt  = "partial_decrypt_pcc"
	StepDecrypt         = "decrypt_pcc"
	StepCreateLCCShare  = "create_lcc_share"
	StepLCCShareService = "lcc_share_service"
)

const (
	EngineReturnCodes = "return_codes"

	MessagePartialDecrypt         = "partial_decrypt_pcc_request"
	MessagePartialDecryptResponse = "partial_decrypt_pcc_response"
	MessageLCCShare               = "lcc_share_request"
	MessageLCCShareResponse       = "lcc_share_response"
	MessageRejection              = "rejection"
	MessageUnknown                = "unknown"
)

// rejection categories
const (
	CategoryValidation = "validation"
	CategoryProtocol   = "protocol"
	CategoryState      = "state"
	CategoryConflict   = "conflict"
	CategoryTransient  = "transient"
	CategoryCodec      = "codec"
	CategoryInternal   = "internal"
)
