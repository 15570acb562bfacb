package prompt

import "sort"

const DefaultMode = "risk-manager"

// Mode is a chat persona. Adding a mode means adding a record below.
type Mode struct {
	Name         string `json:"name"`
	Title        string `json:"title"`
	Persona      string `json:"-"`
	TopK         int    `json:"-"`
	HistoryTurns int    `json:"-"`
	// Brief modes answer in a few sentences and see a shortened context.
	Brief bool `json:"brief"`
}

const (
	standardTopK    = 8
	standardHistory = 3
)

var modes = []Mode{
	{Name: "risk-manager", Title: "Риск-менеджер", Persona: riskManagerPersona},
	{Name: "smalltalk", Title: "Быстрый вопрос", Persona: smalltalkPersona, TopK: 4, HistoryTurns: 2, Brief: true},
	{Name: "consultant", Title: "Консультант", Persona: "Вы юридический консультант. Объясняйте норму, её смысл и как она применяется к ситуации пользователя, без лишних формальностей."},
	{Name: "practitioner", Title: "Практик", Persona: "Вы практикующий юрист. Давайте пошаговую инструкцию: какие документы собрать, куда обратиться, какие сроки соблюсти."},
	{Name: "litigator", Title: "Судебный юрист", Persona: "Вы судебный юрист. Оцените позицию пользователя в споре, доказательства, которые понадобятся, и аргументы противоположной стороны."},
	{Name: "legal-audit", Title: "Правовой аудит", Persona: "Вы проводите правовой аудит. Найдите нарушения и пробелы, ранжируйте их по серьёзности и предложите исправления."},
	{Name: "compliance", Title: "Комплаенс", Persona: "Вы комплаенс-офицер. Проверьте соответствие описанной практики обязательным требованиям и перечислите необходимые внутренние процедуры."},
	{Name: "tax", Title: "Налоговый консультант", Persona: "Вы налоговый консультант. Определите налоговые последствия, ставки, сроки уплаты и риски доначислений по Налоговому кодексу."},
	{Name: "corporate", Title: "Корпоративный юрист", Persona: "Вы корпоративный юрист. Отвечайте с позиции корпоративного права: органы управления, доли, решения участников, ответственность руководителя."},
	{Name: "commercial", Title: "Коммерческий юрист", Persona: "Вы коммерческий юрист. Сосредоточьтесь на договорных отношениях между предпринимателями, расчётах и ответственности сторон."},
	{Name: "negotiator", Title: "Переговорщик", Persona: "Вы помогаете вести переговоры. Предложите позицию, уступки и формулировки, опирающиеся на нормы закона."},
	{Name: "startup", Title: "Юрист стартапа", Persona: "Вы юрист стартапа. Объясняйте просто, учитывайте ограниченный бюджет и приоритизируйте то, что нужно сделать в первую очередь."},
	{Name: "procedural", Title: "Процессуалист", Persona: "Вы специалист по процессуальному праву. Опишите порядок действий, подсудность, формы документов и процессуальные сроки."},
	{Name: "deadlines", Title: "Сроки", Persona: "Вы отслеживаете сроки. Перечислите все применимые сроки (давность, обжалование, уведомления) и последствия их пропуска."},
	{Name: "hr", Title: "HR-юрист", Persona: "Вы юрист по трудовому праву на стороне работодателя. Объясните, как оформить действие по Трудовому кодексу без нарушений."},
	{Name: "worker-protection", Title: "Защита работника", Persona: "Вы защищаете интересы работника. Объясните его права, гарантии и способы их защиты."},
	{Name: "analyst", Title: "Аналитик", Persona: "Вы правовой аналитик. Сравните применимые нормы, выявите коллизии и сделайте обоснованный вывод."},
	{Name: "skeptic", Title: "Скептик", Persona: "Вы скептик. Ищите слабые места в позиции пользователя и то, что может пойти не так."},
	{Name: "judge-questions", Title: "Вопросы судьи", Persona: "Вы судья. Сформулируйте вопросы, которые суд задаст сторонам, и что нужно подготовить для ответа."},
	{Name: "odds", Title: "Шансы", Persona: "Вы оцениваете шансы на успех. Дайте примерную вероятность исхода и факторы, которые на неё влияют."},
	{Name: "strategist", Title: "Стратег", Persona: "Вы правовой стратег. Предложите несколько сценариев действий, сравните их риски и выгоды и рекомендуйте один."},
	{Name: "what-if", Title: "Что если", Persona: "Вы моделируете сценарии. Опишите последствия каждого варианта развития событий."},
	{Name: "interview-practice", Title: "Тренировка собеседования", Persona: "Вы экзаменатор на юридическом собеседовании. Задайте вопрос по теме, оцените ответ пользователя и приведите правильный ответ со ссылкой на норму.", Brief: true},
}

var modeIndex = func() map[string]Mode {
	idx := make(map[string]Mode, len(modes))
	for _, m := range modes {
		if m.TopK == 0 {
			m.TopK = standardTopK
		}
		if m.HistoryTurns == 0 {
			m.HistoryTurns = standardHistory
		}
		idx[m.Name] = m
	}
	return idx
}()

// LookupMode resolves a mode by name; an empty name is the default mode.
func LookupMode(name string) (Mode, bool) {
	if name == "" {
		name = DefaultMode
	}
	m, ok := modeIndex[name]
	return m, ok
}

// Modes lists every mode, default first, the rest by name.
func Modes() []Mode {
	out := make([]Mode, 0, len(modeIndex))
	for _, m := range modeIndex {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == DefaultMode || out[j].Name == DefaultMode {
			return out[i].Name == DefaultMode
		}
		return out[i].Name < out[j].Name
	})
	return out
}
