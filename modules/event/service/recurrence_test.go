package service

import (
	"strings"
	"testing"
	"time"

	coreEntity "github.com/AndyVoronov/ObschiySbor-sub000/core/entity"
	"github.com/AndyVoronov/ObschiySbor-sub000/modules/event/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2026-03-09 is a Monday.
var recurrenceAnchor = time.Date(2026, 3, 9, 18, 30, 0, 0, time.UTC)

func TestOccurrenceDatesWeeklyByDays(t *testing.T) {
	rule := &entity.RecurrenceRule{
		Frequency:  entity.FrequencyWeekly,
		Interval:   1,
		DaysOfWeek: []int{2, 4}, // Tuesday, Thursday
		Count:      4,
	}

	dates, err := occurrenceDates(recurrenceAnchor, rule)
	require.NoError(t, err)
	require.Len(t, dates, 4)

	// The Monday anchor itself is never emitted; the series starts on the
	// next Tuesday and alternates Tue/Thu in chronological order.
	assert.Equal(t, time.Date(2026, 3, 10, 18, 30, 0, 0, time.UTC), dates[0])
	assert.Equal(t, time.Date(2026, 3, 12, 18, 30, 0, 0, time.UTC), dates[1])
	assert.Equal(t, time.Date(2026, 3, 17, 18, 30, 0, 0, time.UTC), dates[2])
	assert.Equal(t, time.Date(2026, 3, 19, 18, 30, 0, 0, time.UTC), dates[3])

	for i := 1; i < len(dates); i++ {
		assert.True(t, dates[i].After(dates[i-1]))
	}
}

func TestOccurrenceDatesDailyInterval(t *testing.T) {
	rule := &entity.RecurrenceRule{
		Frequency: entity.FrequencyDaily,
		Interval:  3,
		Count:     2,
	}

	dates, err := occurrenceDates(recurrenceAnchor, rule)
	require.NoError(t, err)
	require.Len(t, dates, 2)
	assert.Equal(t, recurrenceAnchor.AddDate(0, 0, 3), dates[0])
	assert.Equal(t, recurrenceAnchor.AddDate(0, 0, 6), dates[1])
}

func TestOccurrenceDatesMonthly(t *testing.T) {
	rule := &entity.RecurrenceRule{
		Frequency: entity.FrequencyMonthly,
		Interval:  1,
		Count:     3,
	}

	dates, err := occurrenceDates(recurrenceAnchor, rule)
	require.NoError(t, err)
	require.Len(t, dates, 3)
	assert.Equal(t, recurrenceAnchor.AddDate(0, 1, 0), dates[0])
	assert.Equal(t, recurrenceAnchor.AddDate(0, 3, 0), dates[2])
}

func TestOccurrenceDatesEndDateTermination(t *testing.T) {
	end := recurrenceAnchor.AddDate(0, 0, 15)
	rule := &entity.RecurrenceRule{
		Frequency: entity.FrequencyWeekly,
		Interval:  1,
		EndDate:   &end,
	}

	dates, err := occurrenceDates(recurrenceAnchor, rule)
	require.NoError(t, err)
	// Two weekly repeats fit inside 15 days after the anchor.
	require.Len(t, dates, 2)
	for _, d := range dates {
		assert.False(t, d.After(end))
	}
}

func TestRecurrenceRuleValidate(t *testing.T) {
	end := recurrenceAnchor.AddDate(0, 1, 0)

	cases := []struct {
		name string
		rule entity.RecurrenceRule
		ok   bool
	}{
		{"count mode", entity.RecurrenceRule{Frequency: entity.FrequencyDaily, Interval: 1, Count: 5}, true},
		{"end date mode", entity.RecurrenceRule{Frequency: entity.FrequencyWeekly, Interval: 2, EndDate: &end}, true},
		{"both terminators", entity.RecurrenceRule{Frequency: entity.FrequencyDaily, Interval: 1, Count: 5, EndDate: &end}, false},
		{"neither terminator", entity.RecurrenceRule{Frequency: entity.FrequencyDaily, Interval: 1}, false},
		{"zero interval", entity.RecurrenceRule{Frequency: entity.FrequencyDaily, Interval: 0, Count: 5}, false},
		{"unknown frequency", entity.RecurrenceRule{Frequency: "yearly", Interval: 1, Count: 5}, false},
		{"weekday out of range", entity.RecurrenceRule{Frequency: entity.FrequencyWeekly, Interval: 1, Count: 5, DaysOfWeek: []int{0}}, false},
		{"weekdays on daily", entity.RecurrenceRule{Frequency: entity.FrequencyDaily, Interval: 1, Count: 5, DaysOfWeek: []int{2}}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.rule.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestChildDraftInheritsParent(t *testing.T) {
	desc := "weekly board games night"
	addr := "12 Main St"
	parent := &entity.Event{
		CreatorID:       newUUID(t),
		Title:           "Board Games",
		Description:     &desc,
		Category:        "board_games",
		CategoryData:    coreEntity.JSONB{"min_players": float64(2)},
		EventDate:       recurrenceAnchor,
		MaxParticipants: 8,
		GenderFilter:    entity.GenderFilterAll,
		Address:         &addr,
	}
	parent.ID = newUUID(t)

	occurrence := recurrenceAnchor.AddDate(0, 0, 7)
	child := childDraft(parent, occurrence)

	assert.Equal(t, parent.CreatorID, child.CreatorID)
	assert.Equal(t, parent.Title, child.Title)
	assert.Equal(t, parent.Category, child.Category)
	assert.Equal(t, parent.CategoryData, child.CategoryData)
	assert.Equal(t, occurrence, child.EventDate)
	assert.Equal(t, parent.MaxParticipants, child.MaxParticipants)
	require.NotNil(t, child.ParentEventID)
	assert.Equal(t, parent.ID, *child.ParentEventID)
	assert.Equal(t, entity.EventStatusActive, child.Status)
	assert.False(t, child.IsRecurringParent)
}

func TestChildDraftsGetOwnSlugs(t *testing.T) {
	parent := &entity.Event{
		CreatorID: newUUID(t),
		Title:     "Board Games",
		Slug:      buildSlug("Board Games"),
		EventDate: recurrenceAnchor,
	}
	parent.ID = newUUID(t)

	first := childDraft(parent, recurrenceAnchor.AddDate(0, 0, 7))
	second := childDraft(parent, recurrenceAnchor.AddDate(0, 0, 14))

	assert.True(t, strings.HasPrefix(first.Slug, "board-games-"))
	assert.NotEqual(t, parent.Slug, first.Slug)
	assert.NotEqual(t, first.Slug, second.Slug)
}

func TestChildDraftCarriesDuration(t *testing.T) {
	end := recurrenceAnchor.Add(3 * time.Hour)
	parent := &entity.Event{
		EventDate:  recurrenceAnchor,
		HasEndDate: true,
		EndDate:    &end,
	}

	occurrence := recurrenceAnchor.AddDate(0, 0, 1)
	child := childDraft(parent, occurrence)

	require.NotNil(t, child.EndDate)
	assert.Equal(t, occurrence.Add(3*time.Hour), *child.EndDate)
}
