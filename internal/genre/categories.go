package genre

// DefaultCategories returns the built-in category map.
//
// "piano" appears under both pop and classical; with last-wins resolution it maps to classical.
func DefaultCategories() []Category {
	return []Category{
		{Name: "pop", Tags: []string{"pop", "pop-film", "power-pop", "indie-pop", "synth-pop", "piano", "kids", "study"}},
		{Name: "rock", Tags: []string{
			"rock", "hard-rock", "punk", "punk-rock", "alt-rock", "emo", "metal", "metalcore", "hardcore",
			"grunge", "rock-n-roll", "garage", "guitar", "psych-rock", "rockabilly", "singer-songwriter", "ska",
		}},
		{Name: "hiphop_rnb", Tags: []string{"hip-hop", "r-n-b", "trap", "rap"}},
		{Name: "electronic", Tags: []string{
			"edm", "electro", "electronic", "house", "techno", "trance", "dubstep", "deep-house",
			"minimal-techno", "detroit-techno", "idm", "progressive-house", "breakbeat", "drum-and-bass", "trip-hop",
		}},
		{Name: "jazz_blues", Tags: []string{"jazz", "blues", "soul", "funk", "groove"}},
		{Name: "classical", Tags: []string{"classical", "ambient", "new-age", "opera", "sleep", "piano"}},
		{Name: "latin_world", Tags: []string{
			"latin", "latino", "brazil", "mpb", "salsa", "samba", "forro", "pagode", "reggaeton",
			"spanish", "portuguese", "world-music", "sertanejo", "tango",
		}},
		{Name: "folk_country", Tags: []string{"country", "folk", "bluegrass", "acoustic", "honky-tonk"}},
		{Name: "asian_pop", Tags: []string{"k-pop", "j-pop", "j-rock", "j-dance", "j-idol", "mandopop", "cantopop", "anime"}},
		{Name: "other", Tags: []string{
			"gospel", "comedy", "show-tunes", "children", "happy", "sad", "party", "indian", "iranian",
			"french", "german", "swedish", "malay", "turkish", "goth", "grindcore", "black-metal",
			"death-metal", "dub",
		}},
	}
}
