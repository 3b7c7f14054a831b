package storage

// All includes all the storage modules.
type All struct {
	Commands               Commands
	ElectionEvents         ElectionEvents
	NodeKeys               NodeKeys
	VerificationCardSets   VerificationCardSets
	VerificationCards      VerificationCards
	VerificationCardStates VerificationCardStates
	AllowLists             AllowLists
	Contributions          Contributions
}
