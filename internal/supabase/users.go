package supabase

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"grumini-backend/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// findOne queries the users table with a single equality filter. List-style
// execution (rather than PostgREST's Single) keeps "no rows" a plain
// ErrUserNotFound instead of a provider error string to parse.
func (c *Client) findOne(column, value string) (*models.User, error) {
	data, _, err := c.Supabase.From("users").Select("*", "", false).Eq(column, value).Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to query users by %s: %w", column, err)
	}

	var users []models.User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users response: %w", err)
	}
	if len(users) == 0 {
		return nil, ErrUserNotFound
	}
	return &users[0], nil
}

func (c *Client) GetUserByID(id int64) (*models.User, error) {
	return c.findOne("id", strconv.FormatInt(id, 10))
}

func (c *Client) GetUserByEmail(email string) (*models.User, error) {
	return c.findOne("email", email)
}

func (c *Client) GetUserByGoogleID(googleID string) (*models.User, error) {
	return c.findOne("google_id", googleID)
}

// CreateUser inserts the row and returns the stored representation,
// including the generated id.
func (c *Client) CreateUser(user models.User) (*models.User, error) {
	row := map[string]interface{}{
		"email":    user.Email,
		"username": user.Username,
	}
	if user.Password != "" {
		row["password"] = user.Password
	}
	if user.GoogleID != "" {
		row["google_id"] = user.GoogleID
	}
	if user.AvatarURL != "" {
		row["avatar_url"] = user.AvatarURL
	}

	data, _, err := c.Supabase.From("users").Insert(row, false, "", "representation", "").Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	var users []models.User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("failed to decode created user: %w", err)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("create user returned no representation")
	}
	return &users[0], nil
}

// LinkGoogleID attaches a Google subject id to an existing account matched
// by email during OAuth login.
func (c *Client) LinkGoogleID(userID int64, googleID string) (*models.User, error) {
	row := map[string]interface{}{"google_id": googleID}

	data, _, err := c.Supabase.From("users").
		Update(row, "representation", "").
		Eq("id", strconv.FormatInt(userID, 10)).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to link google id: %w", err)
	}

	var users []models.User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("failed to decode updated user: %w", err)
	}
	if len(users) == 0 {
		return nil, ErrUserNotFound
	}
	return &users[0], nil
}
