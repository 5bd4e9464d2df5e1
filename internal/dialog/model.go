package dialog

type State string

const (
	StateIdle State = "idle"

	// Login
	StateLoginEmail    State = "login_email"
	StateLoginPassword State = "login_password"

	// Inventory quantity prompts (payload: part_id)
	StateStockAddQty    State = "stock_add_qty"
	StateAssembleQty    State = "assemble_qty"
	StateDisassembleQty State = "disassemble_qty"

	// New part flow
	StatePartName     State = "part_name"
	StatePartSKU      State = "part_sku"
	StatePartCategory State = "part_category" // answered via callback
	StatePartType     State = "part_type"     // answered via callback
	StatePartQty      State = "part_qty"
	StatePartMin      State = "part_min"
	StatePartPrice    State = "part_price"
	StatePartLocation State = "part_location"
	StatePartBOMPick  State = "part_bom_pick" // component via callback, or done
	StatePartBOMQty   State = "part_bom_qty"  // per-unit quantity for picked component

	// New job flow
	StateJobPickClient  State = "job_pick_client"  // callback
	StateJobPickMachine State = "job_pick_machine" // callback
	StateJobDesc        State = "job_desc"
	StateJobNotes       State = "job_notes" // finishing notes (payload: job_id)

	// New client flow
	StateClientName    State = "client_name"
	StateClientAddress State = "client_address"
	StateClientPerson  State = "client_person"
	StateClientPhone   State = "client_phone"

	// New machine flow (payload: client_id)
	StateMachineModel    State = "machine_model"
	StateMachineSerial   State = "machine_serial"
	StateMachineInstall  State = "machine_install"
	StateMachineWarranty State = "machine_warranty"

	// New user flow
	StateUserName     State = "user_name"
	StateUserEmail    State = "user_email"
	StateUserPassword State = "user_password"
	StateUserRole     State = "user_role" // callback
)

type Payload map[string]any

type Item struct {
	ChatID  int64
	State   State
	Payload Payload
}

// GetString reads a string value out of a payload.
func GetString(p Payload, key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
