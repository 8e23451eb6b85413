package config

import (
	"github.com/wricardo/gift-journey/game/puzzle"
	"github.com/wricardo/gift-journey/game/quiz"
)

// DefaultContentID names the built-in bundle
const DefaultContentID = "default"

// Default returns the built-in journey content
func Default() *Content {
	return &Content{
		Name:        "Nossa Jornada",
		Description: "Four games about us, then a letter and a surprise",
		Memory: MemoryContent{
			Images: []string{"/1.jpeg", "/2.jpeg", "/3.jpeg", "/4.jpeg", "/5.jpeg", "/6.jpeg"},
		},
		Quiz: QuizContent{
			Questions: []quiz.Question{
				{
					Prompt:  "O que eu mais gosto de fazer?",
					Options: []string{"Comer", "Dormir", "Treinar", "Assistir filmes"},
					Correct: 2,
				},
				{
					Prompt:  "Qual é minha comida favorita?",
					Options: []string{"Pizza", "Hambúrguer", "Churrasco", "Lasanha"},
					Correct: 1,
				},
				{
					Prompt:  "Onde nós nos conhecemos?",
					Options: []string{"Na faculdade", "Por amigos em comum", "No EJC", "Em uma festa"},
					Correct: 2,
				},
				{
					Prompt:  "Qual é minha cor favorita?",
					Options: []string{"Azul", "Verde", "Vermelho", "Roxo"},
					Correct: 0,
				},
				{
					Prompt:  "Qual é a data do nosso aniversário de namoro?",
					Options: []string{"10 de Janeiro", "15 de Novembro", "23 de Dezembro", "30 de Abril"},
					Correct: 2,
				},
			},
		},
		Maze: MazeContent{
			Layout: []string{
				"##########",
				"#S....#..#",
				"####..#..#",
				"#....##.##",
				"#.##.....#",
				"#..#####.#",
				"##.....#.#",
				"#..###...#",
				"#......#G#",
				"##########",
			},
			SwipeThreshold: 50,
		},
		Puzzle: PuzzleContent{
			Tiles: []puzzle.TileSpec{
				{Label: "E", Color: "bg-pink-300"},
				{Label: "U", Color: "bg-pink-400"},
				{Label: "", Color: "bg-pink-500"},
				{Label: "T", Color: "bg-pink-400"},
				{Label: "E", Color: "bg-pink-500"},
				{Label: "", Color: "bg-pink-600"},
				{Label: "A", Color: "bg-pink-500"},
				{Label: "M", Color: "bg-pink-600"},
				{Label: "O", Color: "bg-pink-700"},
			},
			Messages: []string{
				"Meu coração é seu, hoje e sempre",
				"Cada batida do meu coração é por você",
				"Você é o amor da minha vida",
				"Meu coração sempre vai te amar",
				"Nosso amor é eterno",
			},
		},
		Finale: FinaleContent{
			Letter: "Meu amor,\n\n" +
				"Cada momento ao seu lado é uma página nova em nossa história de amor. " +
				"Desde o primeiro dia em que nos conhecemos, você trouxe luz e alegria para minha vida " +
				"de maneiras que eu nunca imaginei possíveis.\n\n" +
				"Obrigado por compartilhar esta jornada comigo. Por todos os sorrisos, aventuras e " +
				"momentos tranquilos que vivemos juntos. Cada um deles é precioso para mim.\n\n" +
				"Você é minha melhor amiga, minha confidente, meu amor. E eu prometo estar ao seu lado " +
				"em cada passo do caminho, enquanto continuamos a escrever nossa história juntos.",
			Signature:        "Com todo meu amor,",
			SecretInvitation: "Meu amor, tenho um convite muito especial para você...",
			SecretQuestion:   "Você aceita ser feliz ao meu lado pelo resto da vida?",
			SecretPromise: "Quero construir memórias, sonhos e uma vida inteira com você. " +
				"Cada dia ao seu lado é uma bênção que quero para sempre.",
			SecretAccepted: "Te amo vida!",
		},
		Timing: Timing{
			MismatchDelayMS: 1000,
			AnswerDelayMS:   1500,
		},
	}
}
