package entity

// EntryFunctionPayloadType is the JSON type tag used by the Aptos REST API for entry function calls.
const EntryFunctionPayloadType = "entry_function_payload"

// EntryFunctionPayload is an unsigned entry function call as accepted by wallets and the fullnode API.
type EntryFunctionPayload struct {
	Type          string   `json:"type"`
	Function      string   `json:"function"`
	TypeArguments []string `json:"type_arguments"`
	Arguments     []any    `json:"arguments"`
}

// NewEntryFunctionPayload builds a payload for function with no type arguments.
func NewEntryFunctionPayload(function string, args ...any) EntryFunctionPayload {
	if args == nil {
		args = []any{}
	}
	return EntryFunctionPayload{
		Type:          EntryFunctionPayloadType,
		Function:      function,
		TypeArguments: []string{},
		Arguments:     args,
	}
}
