package models

import "movienight/proj/internal/storage/postgres"

type Models struct {
	User     *UserModel
	Movie    *MovieModel
	Favorite *FavoriteModel
	Rating   *RatingModel
}

func New(db *postgres.Storage) *Models {
	return &Models{
		User:     &UserModel{db.Conn},
		Movie:    &MovieModel{db.Conn},
		Favorite: &FavoriteModel{db.Conn},
		Rating:   &RatingModel{db.Conn},
	}
}
