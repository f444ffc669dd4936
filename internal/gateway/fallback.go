package gateway

import "github.com/sandeepkv93/questd/internal/model"

var nudgeFallbacks = map[model.Language]string{
	model.LanguageEnglish:    "Your quest awaits, adventurer!",
	model.LanguageSpanish:    "¡Tu misión te espera, aventurero!",
	model.LanguageFrench:     "Ta quête t'attend, aventurier !",
	model.LanguageGerman:     "Deine Quest wartet, Abenteurer!",
	model.LanguageRussian:    "Твой квест ждёт, искатель приключений!",
	model.LanguagePortuguese: "Sua missão espera, aventureiro!",
}

var strategyFallbacks = map[model.Language]string{
	model.LanguageEnglish:    "Break the step into a 15-minute task and start it today.",
	model.LanguageSpanish:    "Divide el paso en una tarea de 15 minutos y empiézala hoy.",
	model.LanguageFrench:     "Découpe l'étape en une tâche de 15 minutes et commence-la aujourd'hui.",
	model.LanguageGerman:     "Teile den Schritt in eine 15-Minuten-Aufgabe und beginne heute.",
	model.LanguageRussian:    "Разбей шаг на 15-минутную задачу и начни сегодня.",
	model.LanguagePortuguese: "Divida a etapa em uma tarefa de 15 minutos e comece hoje.",
}

func NudgeFallback(lang model.Language) string {
	if s, ok := nudgeFallbacks[lang]; ok {
		return s
	}
	return nudgeFallbacks[model.DefaultLanguage]
}

func StrategyFallback(lang model.Language) string {
	if s, ok := strategyFallbacks[lang]; ok {
		return s
	}
	return strategyFallbacks[model.DefaultLanguage]
}
