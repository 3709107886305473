package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// accesstokenの有効期限
const accessTokenTTL = 15 * time.Minute

// refreshtokenの有効期限
const refreshTokenTTL = 30 * 24 * time.Hour

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type AuthUsecase struct {
	cfg    config.Config
	users  repo.UserRepository
	rtRepo repo.RefreshTokenRepository
}

func NewAuthUsecase(cfg config.Config, users repo.UserRepository, rtRepo repo.RefreshTokenRepository) *AuthUsecase {
	return &AuthUsecase{
		cfg:    cfg,
		users:  users,
		rtRepo: rtRepo,
	}
}

type UserDTO struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email     string
	Password  string
	UserAgent string
}

type LoginResult struct {
	User         UserDTO `json:"user"`
	AccessToken  string  `json:"access_token"`
	ExpiresIn    int     `json:"expires_in"`
	RefreshToken string  `json:"refresh_token"`
}

func toUserDTO(u *model.User) UserDTO {
	return UserDTO{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Role:     string(u.Role),
		IsActive: u.IsActive,
	}
}

func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (UserDTO, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)

	//入力検証
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return UserDTO{}, NewHTTPError(http.StatusBadRequest, "provide name, email, password")
	}
	if !emailRe.MatchString(in.Email) {
		return UserDTO{}, NewHTTPError(http.StatusBadRequest, "invalid email")
	}
	if len(in.Password) < 8 {
		return UserDTO{}, NewHTTPError(http.StatusBadRequest, "password too short")
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	pwHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return UserDTO{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	user := &model.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(pwHash),
		Role:         model.RoleUser,
		IsActive:     true,
	}

	if err := u.users.Create(ctx, user); err != nil {
		//email重複はunique制約で検知する
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return UserDTO{}, NewHTTPError(http.StatusConflict, "email already used")
		}
		return UserDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return toUserDTO(user), nil
}

func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	if in.Email == "" || in.Password == "" {
		return LoginResult{}, NewHTTPError(http.StatusBadRequest, "provide email, password")
	}

	user, err := u.users.FindByEmail(ctx, in.Email)
	if err != nil || user == nil {
		return LoginResult{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	//停止ユーザーはログイン不可
	if !user.IsActive {
		return LoginResult{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return LoginResult{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	//last_login更新（失敗してもログインは通す）
	now := time.Now()
	user.LastLoginAt = &now
	_ = u.users.Update(ctx, user)

	accessToken, expiresIn, err := u.issueAccessToken(user)
	if err != nil {
		return LoginResult{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	refreshPlain, err := u.storeNewRefreshToken(ctx, user.ID, in.UserAgent)
	if err != nil {
		return LoginResult{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return LoginResult{
		User:         toUserDTO(user),
		AccessToken:  accessToken,
		ExpiresIn:    expiresIn,
		RefreshToken: refreshPlain,
	}, nil
}

type RefreshResult struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
}

// Refresh はrefresh tokenをローテーションして新しいaccess tokenを返す。
// 使用済みtokenの再提示はreplay扱いで、そのユーザーのtokenを全削除する。
func (u *AuthUsecase) Refresh(ctx context.Context, refreshTokenPlain string, userAgent string) (RefreshResult, error) {
	if refreshTokenPlain == "" {
		return RefreshResult{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	rt, err := u.rtRepo.FindByTokenHash(ctx, hashToken(refreshTokenPlain))
	if err != nil || rt == nil {
		return RefreshResult{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	//期限切れ
	if rt.ExpiresAt.Before(time.Now()) {
		_ = u.rtRepo.DeleteByID(ctx, rt.ID)
		return RefreshResult{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	//used済みが来たらreplay→全削除
	if rt.UsedAt != nil {
		log.Warn().Int64("user_id", rt.UserID).Msg("auth: refresh token replay detected")
		_ = u.rtRepo.DeleteAllByUserID(ctx, rt.UserID)
		return RefreshResult{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	user, err := u.users.FindByID(ctx, rt.UserID)
	if err != nil || user == nil {
		return RefreshResult{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if !user.IsActive {
		return RefreshResult{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}

	//旧tokenをusedにする
	if err := u.rtRepo.MarkUsed(ctx, rt.ID); err != nil {
		_ = u.rtRepo.DeleteAllByUserID(ctx, rt.UserID)
		return RefreshResult{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	newPlain, err := u.storeNewRefreshToken(ctx, user.ID, userAgent)
	if err != nil {
		return RefreshResult{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	accessToken, expiresIn, err := u.issueAccessToken(user)
	if err != nil {
		return RefreshResult{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return RefreshResult{
		AccessToken:  accessToken,
		ExpiresIn:    expiresIn,
		RefreshToken: newPlain,
	}, nil
}

func (u *AuthUsecase) Logout(ctx context.Context, refreshTokenPlain string) error {
	if refreshTokenPlain == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	rt, err := u.rtRepo.FindByTokenHash(ctx, hashToken(refreshTokenPlain))
	if err != nil || rt == nil {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	if err := u.rtRepo.DeleteByID(ctx, rt.ID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *AuthUsecase) Me(ctx context.Context, userID int64) (UserDTO, error) {
	if userID <= 0 {
		return UserDTO{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil || user == nil {
		return UserDTO{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if !user.IsActive {
		return UserDTO{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}

	return toUserDTO(user), nil
}

// jwt発行
func (u *AuthUsecase) issueAccessToken(user *model.User) (string, int, error) {
	now := time.Now()
	exp := now.Add(accessTokenTTL)

	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := t.SignedString([]byte(u.cfg.JWTSecret))
	if err != nil {
		return "", 0, err
	}

	return signed, int(accessTokenTTL.Seconds()), nil
}

// 新しいrefresh tokenを保存して平文を返す（DBにはhashだけ）
func (u *AuthUsecase) storeNewRefreshToken(ctx context.Context, userID int64, userAgent string) (string, error) {
	plain, hash, err := newRandomTokenAndHash()
	if err != nil {
		return "", err
	}

	rt := &model.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		TokenHash: hash,
		UserAgent: userAgent,
		ExpiresAt: time.Now().Add(refreshTokenTTL),
	}

	if err := u.rtRepo.Create(ctx, rt); err != nil {
		return "", err
	}

	return plain, nil
}

// refresh token生成（平文 + DB保存hash）
func newRandomTokenAndHash() (plain string, hash string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}

	plain = base64.RawURLEncoding.EncodeToString(b)
	hash = hashToken(plain)

	return plain, hash, nil
}

func hashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
