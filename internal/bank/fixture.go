package bank

// fixturePools returns a deep copy of the static fallback set. Every
// category the game board offers has at least one entry, so local
// recycling always has stock to work with.
func fixturePools() map[Category][]*Question {
	pools := make(map[Category][]*Question, len(fixture))
	for category, questions := range fixture {
		pool := make([]*Question, len(questions))
		for i, q := range questions {
			clone := q
			clone.Choices = append([]string(nil), q.Choices...)
			clone.WrongQuips = make(map[string]string, len(q.WrongQuips))
			for k, v := range q.WrongQuips {
				clone.WrongQuips[k] = v
			}
			pool[i] = &clone
		}
		pools[category] = pool
	}
	return pools
}

var fixture = map[Category][]Question{
	CategoryScience: {
		{
			ID:          "9d353a5b1db66eb06ca5c1f8512efedeb90adb591bded6a0e6e2b7e031b1295b",
			Category:    CategoryScience,
			Question:    "What gas do plants absorb during photosynthesis?",
			Choices:     []string{"Oxygen", "Hydrogen", "Carbon Dioxide", "Nitrogen"},
			AnswerIndex: 2,
			CorrectQuip: "Photosynthetic perfection! Your brain cells clearly aren't dormant.",
			WrongQuips: map[string]string{
				"0": "Oxygen? Plants exhale that, champ. Like you exhale disappointment.",
				"1": "Hydrogen? That's for blimps and bad decisions. Are you photosynthesizing stupidity?",
				"3": "Nitrogen? Your plants would be sobbing if you fed them that.",
			},
		},
		{
			ID:          "16e9a13e42100ac6114d3e6643a28be9b28994e6309b4e543e68add3bf8eb74e",
			Category:    CategoryScience,
			Question:    "What particle has a negative charge?",
			Choices:     []string{"Proton", "Neutron", "Electron", "Quark"},
			AnswerIndex: 2,
			CorrectQuip: "You must be positively charged about that correct answer!",
			WrongQuips: map[string]string{
				"0": "Proton? That's the opposite of helpful.",
				"1": "Neutron? Neutral much?",
				"3": "Quark? Cool word. Still wrong.",
			},
		},
	},
	CategoryHistory: {
		{
			ID:          "d7311f3f2e3eae38bf40e1bed1069c4a4d7785013db16194b1ebcab125025890",
			Category:    CategoryHistory,
			Question:    "Who was the first president of the United States?",
			Choices:     []string{"Abraham Lincoln", "George Washington", "Thomas Jefferson", "John Adams"},
			AnswerIndex: 1,
			CorrectQuip: "First and finest. Just like your answer.",
			WrongQuips: map[string]string{
				"0": "Lincoln? Wrong century, legend.",
				"2": "Jefferson? He wrote, didn't lead first.",
				"3": "Adams? Almost, but nope.",
			},
		},
		{
			ID:          "8b249fafc550c177f7d4e1a92f4d196c894c25507b777d84596c1bba6f42f2bb",
			Category:    CategoryHistory,
			Question:    "In what year did World War II end?",
			Choices:     []string{"1942", "1945", "1939", "1950"},
			AnswerIndex: 1,
			CorrectQuip: "Nice! You just won the war on ignorance.",
			WrongQuips: map[string]string{
				"0": "1942? That's mid-carnage, not the finale.",
				"2": "1939? That's the kickoff, not the credits.",
				"3": "1950? That was Korea, not Hitler's ending.",
			},
		},
	},
	CategoryPopCulture: {
		{
			ID:          "pc1",
			Category:    CategoryPopCulture,
			Question:    "Which social media platform was originally called 'FaceMash'?",
			Choices:     []string{"Instagram", "Facebook", "Snapchat", "TikTok"},
			AnswerIndex: 1,
			CorrectQuip: "Someone's been paying attention to tech history!",
			WrongQuips: map[string]string{
				"0": "Instagram? That came way later, genius.",
				"2": "Snapchat? Wrong ghost story.",
				"3": "TikTok? You're about a decade off.",
			},
		},
	},
	CategoryArtMusic: {
		{
			ID:          "am1",
			Category:    CategoryArtMusic,
			Question:    "Which artist painted 'The Starry Night'?",
			Choices:     []string{"Pablo Picasso", "Vincent van Gogh", "Claude Monet", "Salvador Dalí"},
			AnswerIndex: 1,
			CorrectQuip: "You've got some culture in you after all!",
			WrongQuips: map[string]string{
				"0": "Picasso? Wrong artistic movement, buddy.",
				"2": "Monet? He did water lilies, not swirls.",
				"3": "Dalí? Too melty, not swirly enough.",
			},
		},
	},
	CategorySports: {
		{
			ID:          "sp1",
			Category:    CategorySports,
			Question:    "How many rings are on the Olympic flag?",
			Choices:     []string{"4", "5", "6", "7"},
			AnswerIndex: 1,
			CorrectQuip: "Olympic knowledge! Going for the gold!",
			WrongQuips: map[string]string{
				"0": "Four? Not enough rings for this circus.",
				"2": "Six? You're overthinking the symbolism.",
				"3": "Seven? This isn't a phone number.",
			},
		},
	},
	CategoryRandom: {
		{
			ID:          "r1",
			Category:    CategoryRandom,
			Question:    "What's the most stolen food in the world?",
			Choices:     []string{"Bread", "Cheese", "Chocolate", "Bananas"},
			AnswerIndex: 1,
			CorrectQuip: "You know your crime statistics! Suspicious...",
			WrongQuips: map[string]string{
				"0": "Bread? Too basic for crime.",
				"2": "Chocolate? Sweet guess, but nope.",
				"3": "Bananas? That's just monkey business.",
			},
		},
	},
}
