package reputation

import (
	"fmt"

	"github.com/robalyx/repledger/internal/bot/utils"
	"github.com/robalyx/repledger/internal/database/types"
	"github.com/robalyx/repledger/internal/database/types/enum"
	"github.com/robalyx/repledger/internal/reputation"
	pkgutils "github.com/robalyx/repledger/pkg/utils"
)

// Accepted renders the public announcement of an accepted request.
func Accepted(req reputation.Request, result *reputation.Result) string {
	actor := utils.Mention(req.ActorID)
	target := utils.Mention(req.TargetID)
	record := result.Record

	switch req.Action {
	case enum.ActionKindRep:
		return fmt.Sprintf("👍 %s gave **+1 rep** to %s!\n⭐ New rep: **%d**", actor, target, record.PositiveCount)
	case enum.ActionKindNegRep:
		return fmt.Sprintf("⚠️ %s gave **-1 rep** to %s.\n👎 Negative rep: **%d**", actor, target, record.NegativeCount)
	case enum.ActionKindSetRep:
		return fmt.Sprintf("🛠️ %s set %s's rep to **%d**.", actor, target, record.Net())
	case enum.ActionKindFeedback:
		return fmt.Sprintf("⭐ %s rated %s **%d/%d**.\n%s",
			actor, target, req.Amount, types.MaxStars, RatingLine(result.Rating))
	default:
		return fmt.Sprintf("✅ %s updated %s.", actor, target)
	}
}

// Standing renders an account's record and rating summary.
func Standing(accountID uint64, record *types.ReputationRecord, rating *types.RatingSummary) string {
	return fmt.Sprintf("📊 %s has **%d** rep.\n👍 %d • 👎 %d • Trust: **%s**\n%s",
		utils.Mention(accountID),
		record.PositiveCount,
		record.PositiveCount,
		record.NegativeCount,
		pkgutils.FormatTrust(record.PositiveCount, record.NegativeCount),
		RatingLine(rating))
}

// RatingLine renders the star average of a rating summary.
func RatingLine(rating *types.RatingSummary) string {
	if rating == nil || !rating.HasRatings() {
		return "☆☆☆☆☆ No ratings yet"
	}

	noun := "ratings"
	if rating.Count == 1 {
		noun = "rating"
	}

	return fmt.Sprintf("%s **%.2f** (%d %s)", pkgutils.RenderStars(*rating.Average), *rating.Average, rating.Count, noun)
}
