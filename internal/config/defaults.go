package config

// DefaultDifficulties is the built-in profile set used when the config file
// declares none. Numbers mirror the shipped example config.
func DefaultDifficulties() []Difficulty {
	return []Difficulty{
		{
			Name:           "easy",
			GraceSeconds:   1800,
			DespawnSeconds: 900,
			Icon:           "lime_wool",
			Permission:     "pyd.select.easy",
			Slot:           11,
			WelcomeMessage: "welcome_easy",
		},
		{
			Name:           "normal",
			GraceSeconds:   300,
			DespawnSeconds: 300,
			Icon:           "yellow_wool",
			Permission:     "pyd.select.normal",
			Slot:           13,
			WelcomeMessage: "welcome_normal",
		},
		{
			Name:           "hard",
			GraceSeconds:   0,
			DespawnSeconds: 60,
			Icon:           "red_wool",
			Permission:     "pyd.select.hard",
			Slot:           15,
			WelcomeMessage: "welcome_hard",
		},
	}
}
