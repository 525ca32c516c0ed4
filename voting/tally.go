// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"sort"

	"github.com/danielhkuo/club-checkin/models"
)

// rankPoints is the score of each podium rank. Lower ranks count as votes
// but earn nothing.
var rankPoints = map[int]int{1: 3, 2: 2, 3: 1}

type nomineeScore struct {
	nominee models.Participant
	name    string
	points  int
	first   int
	second  int
}

// Tally scores a meeting's votes per category and returns the top three
// nominees of each category with their medals. Every category is present,
// empty when it received no votes.
func Tally(votes []models.Vote) map[models.Category][]models.NomineeResult {
	byCategory := make(map[models.Category]map[models.Participant]*nomineeScore)
	for _, c := range models.Categories {
		byCategory[c] = make(map[models.Participant]*nomineeScore)
	}

	for _, v := range votes {
		scores, ok := byCategory[v.Category]
		if !ok {
			continue
		}
		s, ok := scores[v.Nominee]
		if !ok {
			s = &nomineeScore{nominee: v.Nominee, name: v.Name}
			scores[v.Nominee] = s
		}
		s.points += rankPoints[v.Rank]
		switch v.Rank {
		case 1:
			s.first++
		case 2:
			s.second++
		}
	}

	results := make(map[models.Category][]models.NomineeResult, len(byCategory))
	for category, scores := range byCategory {
		results[category] = podium(scores)
	}
	return results
}

func podium(scores map[models.Participant]*nomineeScore) []models.NomineeResult {
	ranked := make([]*nomineeScore, 0, len(scores))
	for _, s := range scores {
		ranked = append(ranked, s)
	}

	// Lexicographic order: points, first-place votes, second-place votes,
	// then nominee key so equal scores come out in a fixed order.
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.points != b.points {
			return a.points > b.points
		}
		if a.first != b.first {
			return a.first > b.first
		}
		if a.second != b.second {
			return a.second > b.second
		}
		return a.nominee.Key() < b.nominee.Key()
	})

	if len(ranked) > len(models.Medals) {
		ranked = ranked[:len(models.Medals)]
	}

	out := make([]models.NomineeResult, len(ranked))
	for i, s := range ranked {
		out[i] = models.NomineeResult{
			NomineeMemberID:  s.nominee.MemberID(),
			NomineeGuestID:   s.nominee.GuestID(),
			Name:             s.name,
			TotalPoints:      s.points,
			FirstPlaceVotes:  s.first,
			SecondPlaceVotes: s.second,
			Medal:            models.Medals[i],
		}
	}
	return out
}
