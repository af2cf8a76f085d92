package analysis

import (
	"fmt"
	"sort"
	"strings"
)

const systemPrompt = `Ты — психолог-эксперт по самопознанию. Ты анализируешь ситуации, в которых человек чувствовал, что что-то пошло не так, находишь в них проявленные качества характера и переводишь негативные качества в их позитивные "дуалы". Отвечай всегда СТРОГО одним JSON-объектом, без пояснений до или после него.`

const qualitiesList = `Эмоциональные качества (emotional):
Впечатлительность, Ранимость, Обидчивость, Вспыльчивость, Спокойствие, Завистливость, Злопамятность, Щедрость, Жадность, Мстительность, Доброжелательность, Циничность

Поведенческие качества (behavioral):
Ответственность, Безответственность, Пунктуальность, Безалаберность, Аккуратность, Неряшливость, Лень, Трудолюбие, Болтливость, Сдержанность, Стеснительность, Дерзость, Харизматичность, Скучность, Манипулятивность, Услужливость

Когнитивные качества (cognitive):
Внимательность, Невнимательность, Любопытство, Безразличие, Подозрительность, Доверчивость, Проницательность, Наивность, Простодушие, Креативность, Консервативность, Забывчивость

Волевые качества (willpower):
Решительность, Упрямство, Трусость, Смелость, Самоуверенность, Осторожность, Прямолинейность, Лицемерие, Терпимость, Нетерпимость, Амбициозность, Инфантильность, Авторитарность`

// BuildAnalysisPrompt renders the primary-analysis prompt. Every situation is
// numbered with its stable id and the model is required to echo the id back,
// so the response can be correlated without relying on array order.
func BuildAnalysisPrompt(situations []Situation) string {
	var numbered strings.Builder
	for _, s := range situations {
		fmt.Fprintf(&numbered, "Ситуация %d: %s\n\n", s.ID, s.Text)
	}

	return fmt.Sprintf(`Вот список качеств по категориям:
%s

Вот ситуации, которые описал человек (каждая с номером):

%sДля каждой ситуации определи:
1. Краткое описание ситуации (5-10 слов)
2. Топ-3 качества из списка выше, которые проявились в этой ситуации (укажи категорию каждого)
3. Для каждого качества — его позитивный "дуал" (позитивное проявление в жизни) и краткое объяснение

Примеры дуалов:
- "Наивность" → "Открытость новому и способность доверять"
- "Упрямство" → "Настойчивость и верность своим принципам"
- "Вспыльчивость" → "Страстность и эмоциональная честность"

Ответь СТРОГО в формате JSON. Поле "id" каждого анализа ОБЯЗАНО совпадать с номером ситуации:
{
  "analyses": [
    {
      "id": номер_ситуации,
      "shortDescription": "краткое описание ситуации",
      "qualities": [
        {"name": "название качества", "category": "emotional|behavioral|cognitive|willpower", "isNegative": true|false}
      ],
      "duals": [
        {"quality": "негативное качество", "positive": "позитивный дуал", "explanation": "краткое объяснение связи"}
      ]
    }
  ],
  "qualityRatings": [
    {"quality": "название", "count": число_повторений, "category": "категория"}
  ]
}

Массив "analyses" должен содержать ровно столько элементов, сколько ситуаций, по одному на каждый номер. Отвечай только JSON, без дополнительного текста.`, qualitiesList, numbered.String())
}

// BuildFeathersPrompt renders the counter-habit prompt.
func BuildFeathersPrompt(qualities []string, duals []Dual) string {
	var dualLines strings.Builder
	for _, d := range duals {
		fmt.Fprintf(&dualLines, "%s → %s\n", d.Quality, d.Positive)
	}

	return fmt.Sprintf(`У человека следующие качества: %s

Его дуалы (негативное → позитивное):
%s
Иногда большие и успешные системы существуют благодаря невероятно малому элементу — противовесу. Пёрышко, чтобы человек не "разъехался" негативными сторонами качеств. Сохранить огромное количество позитивных качеств, если положить небольшое пёрышко как противовес.

Предложи конкретные "пёрышки" — маленькие действия-противовесы, разбитые на три группы:
- "moment": 2-3 действия в момент проявления качества
- "mindset": 2-3 установки мышления
- "regular": 2-3 регулярных ритуала

Плюс 2-3 "uniqueActions" — неожиданные, максимально персонализированные действия именно под этот набор качеств.

ЗАПРЕЩЕНЫ банальные советы вида "медитируй 10 минут", "веди дневник благодарности", "выпей стакан воды". Каждое пёрышко должно опираться на конкретное качество из списка.

Примеры хорошего формата:
- "Раз в 2 недели получать неприятный для себя фидбек у рационального человека"
- "Перед важным решением спрашивать совета у 2 разных людей"

Ответь СТРОГО в формате JSON:
{
  "feathersStructured": {
    "moment": ["..."],
    "mindset": ["..."],
    "regular": ["..."]
  },
  "uniqueActions": ["..."]
}

Только JSON, без дополнительного текста.`, strings.Join(qualities, ", "), dualLines.String())
}

// BuildActivitiesPrompt renders the career/money/hobby prompt. Quality names
// are embedded in descending frequency order, ties kept in first-seen order.
func BuildActivitiesPrompt(qualities []string, duals []Dual, ratings []QualityRating) string {
	var positives []string
	for _, d := range duals {
		positives = append(positives, d.Positive)
	}

	ranked := make([]QualityRating, len(ratings))
	copy(ranked, ratings)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Count > ranked[j].Count })
	var rankedNames []string
	for _, r := range ranked {
		rankedNames = append(rankedNames, fmt.Sprintf("%s (%d)", r.Quality, r.Count))
	}

	return fmt.Sprintf(`У человека следующие качества: %s

Качества по частоте проявления: %s

Его сильные стороны (позитивные дуалы): %s

Учитывая эти качества, сильные и слабые стороны:

1. Отсортируй качества: "sortedWeakQualities" — слабые стороны от самой выраженной, "sortedStrongQualities" — сильные стороны от самой выраженной.
2. Предложи 4-6 ролей ("roles"), в которых этому человеку будет комфортно: role — название роли, type — тип занятости (наём, свой проект, фриланс и т.п.), whyComfortable — почему комфортно или выгодно.
3. Предложи 3-5 способов заработать на этих качествах ("moneyIdeas"), отсортированных по вероятности успеха: idea, explanation, successProbability — целое число от 0 до 100.
4. Назови 3-4 известных людей с похожим набором качеств ("celebrities"): name и wikiId — идентификатор статьи английской Википедии для поиска портрета.
5. Предложи 4-6 хобби ("hobbies") с кратким объяснением почему.

Ответь СТРОГО в формате JSON:
{
  "sortedWeakQualities": ["..."],
  "sortedStrongQualities": ["..."],
  "roles": [{"role": "...", "type": "...", "whyComfortable": "..."}],
  "moneyIdeas": [{"idea": "...", "explanation": "...", "successProbability": 0}],
  "celebrities": [{"name": "...", "wikiId": "..."}],
  "hobbies": ["..."]
}

Только JSON, без дополнительного текста.`, strings.Join(qualities, ", "), strings.Join(rankedNames, ", "), strings.Join(positives, ", "))
}
