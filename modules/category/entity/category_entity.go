package entity

import (
	coreEntity "github.com/AndyVoronov/ObschiySbor-sub000/core/entity"
)

// Category is one of the fixed activity kinds an event can belong to.
type Category string

const (
	CategoryBoardGames       Category = "board_games"
	CategoryHiking           Category = "hiking"
	CategoryYoga             Category = "yoga"
	CategoryCycling          Category = "cycling"
	CategoryRunning          Category = "running"
	CategorySwimming         Category = "swimming"
	CategoryCooking          Category = "cooking"
	CategoryPhotography      Category = "photography"
	CategoryBookClub         Category = "book_club"
	CategoryLanguageExchange Category = "language_exchange"
	CategoryMovies           Category = "movies"
	CategoryConcerts         Category = "concerts"
	CategoryVolunteering     Category = "volunteering"
	CategoryPicnic           Category = "picnic"
	CategoryFishing          Category = "fishing"
	CategoryDancing          Category = "dancing"
	CategoryCrafts           Category = "crafts"
	CategoryQuiz             Category = "quiz"
	CategoryFootball         Category = "football"
	CategoryTabletopRPG      Category = "tabletop_rpg"
)

// All lists every supported category in a stable order.
func All() []Category {
	return []Category{
		CategoryBoardGames, CategoryHiking, CategoryYoga, CategoryCycling,
		CategoryRunning, CategorySwimming, CategoryCooking, CategoryPhotography,
		CategoryBookClub, CategoryLanguageExchange, CategoryMovies, CategoryConcerts,
		CategoryVolunteering, CategoryPicnic, CategoryFishing, CategoryDancing,
		CategoryCrafts, CategoryQuiz, CategoryFootball, CategoryTabletopRPG,
	}
}

func (c Category) Valid() bool {
	for _, known := range All() {
		if c == known {
			return true
		}
	}
	return false
}

// CategorySchema describes the expected shape of an event's category_data
// payload for one category. Fields maps field name -> expected kind
// ("string", "number", "boolean" or "array").
type CategorySchema struct {
	Category Category         `db:"category" json:"category"`
	Fields   coreEntity.JSONB `db:"fields" json:"fields"`
	coreEntity.BaseEntity
}
