package models

// PickWinner выбирает победителя с вероятностью, пропорциональной ton_value.
// r - случайное число из [0, 1). Пустой список даёт nil.
func PickWinner(participants []*Player, r float64) *Player {
	if len(participants) == 0 {
		return nil
	}

	var total float64
	for _, p := range participants {
		total += p.TonValue
	}

	target := r * total

	var sum float64
	for _, p := range participants {
		sum += p.TonValue
		if target <= sum {
			return p
		}
	}

	return participants[0]
}
