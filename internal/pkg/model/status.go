package model

type FetchStatus struct {
	Loading   bool    `json:"loading"`
	LastError *string `json:"lastError"`
}

type CommandResult struct {
	Busy    bool    `json:"busy"`
	Message *string `json:"message"`
	Error   *string `json:"error"`
}

type Status struct {
	Devices FetchStatus `json:"devices"`
	Events  FetchStatus `json:"events"`
}

// Snapshot is a consistent read of the store.
type Snapshot struct {
	Devices Devices `json:"devices"`
	Events  Events  `json:"events"`
	Status  Status  `json:"status"`
}

type CommandSlot struct {
	DeviceID string        `json:"deviceId"`
	Result   CommandResult `json:"result"`
}

// View is what the presentation layer renders.
type View struct {
	Snapshot
	Command CommandSlot `json:"command"`
}
