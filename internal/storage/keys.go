package storage

// Ключи персистентного key-value хранилища. Оба процесса (popup и координатор)
// читают и пишут одни и те же ключи без транзакционных гарантий: побеждает
// последняя запись.
const (
	KeyUserID              = "userId"
	KeyInstallDate         = "installDate"
	KeyFirstUseDate        = "firstUseDate"
	KeyJWTToken            = "jwtToken"
	KeyUser                = "user"
	KeyUserPlan            = "userPlan"
	KeyPostsThisMonth      = "postsThisMonth"
	KeyTotalPostsGenerated = "totalPostsGenerated"
	KeyMonthlyResetDate    = "monthlyResetDate"
	KeyLastActiveDate      = "lastActiveDate"
	KeyGDPRConsent         = "gdprConsent"
)
