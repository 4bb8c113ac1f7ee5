package models

// Названия тарифных планов.
const (
	PlanFree = "free"
	PlanPro  = "pro"
)

// PlanUsage хранимое состояние месячной квоты пользователя.
// Все даты — epoch в миллисекундах, как их пишет и читает вторая сторона
// key-value хранилища.
type PlanUsage struct {
	UserPlan            string `json:"userPlan"`            // Тарифный план: free или pro
	PostsThisMonth      int    `json:"postsThisMonth"`      // Сгенерировано постов в текущем месяце
	TotalPostsGenerated int    `json:"totalPostsGenerated"` // Сгенерировано постов за всё время
	MonthlyResetDate    int64  `json:"monthlyResetDate"`    // Дата следующего сброса счётчика
}

// UsageInfo производное read-only представление квоты для интерфейса.
type UsageInfo struct {
	Plan              string `json:"plan"`
	IsPro             bool   `json:"isPro"`
	PostsUsed         int    `json:"postsUsed"`
	PostsLimit        int    `json:"postsLimit"`
	PostsRemaining    int    `json:"postsRemaining"`
	CanGenerate       bool   `json:"canGenerate"`
	ResetDate         string `json:"resetDate"` // Человеко-читаемая дата сброса
	AdvancedFeatures  bool   `json:"advancedFeatures"`
	NeedsWatermark    bool   `json:"needsWatermark"`
	TotalPosts        int    `json:"totalPosts"`
	DaysSinceFirstUse int    `json:"daysSinceFirstUse"`
}
