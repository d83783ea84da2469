package models

type Movie struct {
	ID           int64    `json:"id" db:"id"`                       // Upstream catalog id (TMDB)
	Title        string   `json:"title" db:"title"`                 // Movie title
	Overview     *string  `json:"overview" db:"overview"`           // Short plot summary
	PosterPath   *string  `json:"poster_path" db:"poster_path"`     // Relative poster image path
	BackdropPath *string  `json:"backdrop_path" db:"backdrop_path"` // Relative backdrop image path
	ReleaseDate  *string  `json:"release_date" db:"release_date"`   // Release date as reported upstream (YYYY-MM-DD)
	VoteAverage  *float64 `json:"vote_average" db:"vote_average"`   // Upstream average score
	VoteCount    *int32   `json:"vote_count" db:"vote_count"`       // Upstream number of votes
	Popularity   *float64 `json:"popularity" db:"popularity"`       // Upstream popularity, drives trending/popular ordering
}

type User struct {
	ID           int64  `json:"id" db:"id"`
	Username     string `json:"username" db:"username"`
	Email        string `json:"email" db:"email"`
	PasswordHash []byte `json:"-" db:"password_hash"`
}

// AnonymousUser is stored in the request context when no bearer token was sent.
var AnonymousUser = &User{}

func (u *User) IsAnonymous() bool {
	return u == AnonymousUser
}

type Favorite struct {
	ID      int64 `json:"id" db:"id"`
	UserID  int64 `json:"user_id" db:"user_id"`
	MovieID int64 `json:"movie_id" db:"movie_id"`
}

type Rating struct {
	ID      int64   `json:"id" db:"id"`
	UserID  int64   `json:"user_id" db:"user_id"`
	MovieID int64   `json:"movie_id" db:"movie_id"`
	Score   float64 `json:"score" db:"score"`
}

// Category exists in the relational schema only, nothing reads or writes it yet.
type Category struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

type AuthToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      int64  `json:"user_id"`
	Username    string `json:"username"`
}
