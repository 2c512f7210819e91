package patrol

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jengzang/patroliq-backend-go/internal/models"
)

// Briefing renders the operational patrol deployment briefing as markdown
func Briefing(zones []models.PatrolZone) string {
	title := cases.Title(language.English)

	var b strings.Builder
	b.WriteString("🛡 **Operational Patrol Deployment Briefing**\n\n")
	b.WriteString("Based on the crime clustering analysis, the following districts show the highest " +
		"concentration of serious or repeating criminal activity. Patrol units are advised to " +
		"prioritize these locations in order of urgency:\n\n")

	for _, z := range zones {
		fmt.Fprintf(&b, "🔹 **Patrol Zone %d - District %s**\n", z.Rank, z.District)
		fmt.Fprintf(&b, "   • Estimated incidents: **%d cases**\n", z.CrimeCount)
		fmt.Fprintf(&b, "   • Most common crime type: **%s**\n", title.String(z.TopCrime))
		b.WriteString("   • Action: Deploy additional patrol units, increase visibility, and monitor peak activity times.\n\n")
	}

	b.WriteString("---\n")
	b.WriteString("📌 *Recommendation:* Use mobile patrols during low traffic hours and fixed-point surveillance during peak crime hours.\n")
	b.WriteString("📌 *Note:* Continue monitoring evolving hotspots as the clustering identifies natural cluster shifts over time.\n")
	return b.String()
}
