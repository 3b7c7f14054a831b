package codec

import (
	"fmt"

	"github.com/evote-ccr/control-component/model/messages"
)

const (
	CodeMin uint8 = iota + 1

	// partial decryption of the partial choice return codes
	CodePartialDecryptPCCRequest
	CodePartialDecryptPCCResponse

	// long choice return code shares
	CodeLCCShareRequest
	CodeLCCShareResponse

	CodeRejection

	CodeMax
)

// MessageCodeFromInterface returns the correct Code based on the underlying type of message v.
func MessageCodeFromInterface(v interface{}) (uint8, string, error) {
	switch v.(type) {
	case *messages.PartialDecryptPCCRequest:
		return CodePartialDecryptPCCRequest, "CodePartialDecryptPCCRequest", nil
	case *messages.PartialDecryptPCCResponse:
		return CodePartialDecryptPCCResponse, "CodePartialDecryptPCCResponse", nil
	case *messages.LCCShareRequest:
		return CodeLCCShareRequest, "CodeLCCShareRequest", nil
	case *messages.LCCShareResponse:
		return CodeLCCShareResponse, "CodeLCCShareResponse", nil
	case *messages.RejectionResponse:
		return CodeRejection, "CodeRejection", nil
	default:
		return 0, "", fmt.Errorf("invalid encode type (%T)", v)
	}
}

// InterfaceFromMessageCode returns an interface with the correct underlying go type
// of the message code represents.
// Expected error returns during normal operations:
//   - ErrUnknownMsgCode if message code does not match any of the configured message codes above.
func InterfaceFromMessageCode(code uint8) (interface{}, string, error) {
	switch code {
	case CodePartialDecryptPCCRequest:
		return &messages.PartialDecryptPCCRequest{}, "PartialDecryptPCCRequest", nil
	case CodePartialDecryptPCCResponse:
		return &messages.PartialDecryptPCCResponse{}, "PartialDecryptPCCResponse", nil
	case CodeLCCShareRequest:
		return &messages.LCCShareRequest{}, "LCCShareRequest", nil
	case CodeLCCShareResponse:
		return &messages.LCCShareResponse{}, "LCCShareResponse", nil
	case CodeRejection:
		return &messages.RejectionResponse{}, "RejectionResponse", nil
	default:
		return nil, "", NewUnknownMsgCodeErr(code)
	}
}
