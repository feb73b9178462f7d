package rules

// Compression levels.
const (
	LevelMinimal    = 1
	LevelModerate   = 2
	LevelAggressive = 3
	LevelMaximum    = 4
)

func defaults() *Tables {
	return &Tables{
		stopWords: NewSet(
			"the", "is", "in", "at", "of", "and", "to", "for", "on", "with", "a", "an",
		),
		synonyms: NewMapping(
			Pair{"utilize", "use"},
			Pair{"demonstrate", "show"},
			Pair{"accomplish", "do"},
			Pair{"in order to", "to"},
			Pair{"due to the fact that", "because"},
			Pair{"approximately", "approx."},
			Pair{"for example", "e.g."},
			Pair{"do not", "don't"},
			Pair{"cannot", "can't"},
			Pair{"does not", "doesn't"},
			Pair{"implement", "use"},
			Pair{"facilitate", "help"},
			Pair{"leverage", "use"},
			Pair{"optimize", "improve"},
			Pair{"enhance", "improve"},
			Pair{"mitigate", "reduce"},
			Pair{"necessitate", "need"},
			Pair{"commence", "start"},
			Pair{"terminate", "end"},
			Pair{"subsequent", "later"},
			Pair{"prior to", "before"},
			Pair{"in the event that", "if"},
			Pair{"despite the fact that", "although"},
			Pair{"at this point in time", "now"},
			Pair{"in the near future", "soon"},
		),
		redundant: NewMapping(
			Pair{"repeat again", "repeat"},
			Pair{"added bonus", "bonus"},
			Pair{"advance planning", "planning"},
			Pair{"basic essentials", "essentials"},
			Pair{"blend together", "blend"},
			Pair{"collaborate together", "collaborate"},
			Pair{"end result", "result"},
			Pair{"future plans", "plans"},
			Pair{"past history", "history"},
			Pair{"revert back", "revert"},
			Pair{"sum total", "total"},
			Pair{"unexpected surprise", "surprise"},
		),
		numbers: NewMapping(
			Pair{"one", "1"}, Pair{"two", "2"}, Pair{"three", "3"}, Pair{"four", "4"},
			Pair{"five", "5"}, Pair{"six", "6"}, Pair{"seven", "7"}, Pair{"eight", "8"},
			Pair{"nine", "9"}, Pair{"ten", "10"}, Pair{"eleven", "11"}, Pair{"twelve", "12"},
			Pair{"thirteen", "13"}, Pair{"fourteen", "14"}, Pair{"fifteen", "15"},
			Pair{"sixteen", "16"}, Pair{"seventeen", "17"}, Pair{"eighteen", "18"},
			Pair{"nineteen", "19"}, Pair{"twenty", "20"}, Pair{"thirty", "30"},
			Pair{"forty", "40"}, Pair{"fifty", "50"}, Pair{"sixty", "60"},
			Pair{"seventy", "70"}, Pair{"eighty", "80"}, Pair{"ninety", "90"},
			Pair{"hundred", "100"}, Pair{"thousand", "1000"}, Pair{"million", "1000000"},
		),
		levels: map[int]string{
			LevelMinimal:    "minimal",
			LevelModerate:   "moderate",
			LevelAggressive: "aggressive",
			LevelMaximum:    "maximum",
		},
		adjectives: NewSet(
			"very", "extremely", "really", "just", "simply", "quite", "rather",
			"somewhat", "fairly", "pretty", "totally", "absolutely", "completely",
			"utterly", "entirely", "fully", "thoroughly", "wholly", "perfectly",
		),
	}
}
