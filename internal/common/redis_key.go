package common

import "fmt"

func RedisKeyLeaderboard(campaignID string) string {
	return fmt.Sprintf("leaderboard:%s", campaignID)
}
