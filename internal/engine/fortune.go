package engine

const specialFortune = "超町長調帳朝腸蝶大吉"

// "null" and "undefined" are joke outcomes, not missing values.
var fortunes = []string{"大吉", "中吉", "吉", "小吉", "null", "undefined"}

const (
	adminSpecialChance  = 0.25
	memberSpecialChance = 0.002
)

// drawFortune picks the special outcome with an admin-dependent chance,
// otherwise one of the ordinary outcomes uniformly.
func drawFortune(isAdmin bool, rnd func() float64) string {
	chance := memberSpecialChance
	if isAdmin {
		chance = adminSpecialChance
	}
	if rnd() < chance {
		return specialFortune
	}
	i := int(rnd() * float64(len(fortunes)))
	if i >= len(fortunes) {
		i = len(fortunes) - 1
	}
	return fortunes[i]
}
