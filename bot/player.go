package main

type Player uint8

const (
	Self Player = iota
	Opponent
)

func (p Player) other() Player {
	return p ^ 1
}

func (p Player) String() string {
	if p == Self {
		return "Self"
	}
	return "Opponent"
}

// sign is the negamax colour of the player to move.
func (p Player) sign() int {
	if p == Self {
		return 1
	}
	return -1
}
