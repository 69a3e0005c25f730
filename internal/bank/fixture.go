package bank

import "trivia-quiz/internal/domain"

// Default returns the compiled-in question bank.
func Default() *Bank {
	b, err := New(fixture())
	if err != nil {
		panic(err)
	}
	return b
}

func fixture() []domain.Quiz {
	return []domain.Quiz{
		{
			Name: "Harry Potter",
			Questions: []domain.Question{
				{
					Text:           "Who is the Half-Blood Prince?",
					Options:        []string{"Harry Potter", "Severus Snape", "Tom Riddle", "Draco Malfoy"},
					CorrectAnswers: []int{2},
				},
				{
					Text:           "What is the core of Harry's wand?",
					Options:        []string{"Phoenix feather", "Dragon heartstring", "Unicorn hair", "Thestral tail hair"},
					CorrectAnswers: []int{1},
				},
				{
					Text:           "Who did Harry fight in the Triwizard Tournament?",
					Options:        []string{"Cedric Diggory", "Viktor Krum", "Fleur Delacour", "All of the above"},
					CorrectAnswers: []int{4},
				},
			},
		},
		{
			Name: "Lord of the Rings",
			Questions: []domain.Question{
				{
					Text:           "Who forged the One Ring?",
					Options:        []string{"Sauron", "Elrond", "Gandalf", "Saruman"},
					CorrectAnswers: []int{1},
				},
				{
					Text:           "Which race is Legolas?",
					Options:        []string{"Dwarf", "Elf", "Human", "Hobbit"},
					CorrectAnswers: []int{2},
				},
				{
					Text:           "Who carries the ring to Mount Doom?",
					Options:        []string{"Frodo", "Sam", "Gollum", "Bilbo"},
					CorrectAnswers: []int{1},
				},
			},
		},
	}
}
