package fleet

type Stop struct {
	Name    string `groups:"basic"`
	Address string `groups:"basic"`

	Location *Location `groups:"basic"`

	// Position index within the route, contiguous from 0.
	Order int `groups:"basic"`

	PickupTime string `groups:"basic"`

	StudentRefs []string `groups:"basic"`
}
