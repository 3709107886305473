package usecase

import (
	"context"
	"net/http"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type AddressUsecase struct {
	addressRepo repo.AddressRepository
}

func NewAddressUsecase(addressRepo repo.AddressRepository) *AddressUsecase {
	return &AddressUsecase{addressRepo: addressRepo}
}

type AddressInput struct {
	AddressLine string
	City        string
	State       string
	Pincode     string
	Country     string
	Mobile      string
}

func validateAddressInput(in AddressInput) error {
	if strings.TrimSpace(in.AddressLine) == "" {
		return NewHTTPError(http.StatusBadRequest, "address_line is required")
	}
	if strings.TrimSpace(in.City) == "" {
		return NewHTTPError(http.StatusBadRequest, "city is required")
	}
	if strings.TrimSpace(in.Pincode) == "" {
		return NewHTTPError(http.StatusBadRequest, "pincode is required")
	}
	if strings.TrimSpace(in.Country) == "" {
		return NewHTTPError(http.StatusBadRequest, "country is required")
	}
	return nil
}

func (u *AddressUsecase) Create(ctx context.Context, userID int64, in AddressInput) (model.Address, error) {
	if userID <= 0 {
		return model.Address{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := validateAddressInput(in); err != nil {
		return model.Address{}, err
	}

	addr := model.Address{
		UserID:      userID,
		AddressLine: in.AddressLine,
		City:        in.City,
		State:       in.State,
		Pincode:     in.Pincode,
		Country:     in.Country,
		Mobile:      in.Mobile,
		Status:      true,
	}

	id, err := u.addressRepo.Create(ctx, addr)
	if err != nil {
		return model.Address{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	addr.ID = id

	return addr, nil
}

func (u *AddressUsecase) List(ctx context.Context, userID int64) ([]model.Address, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	items, err := u.addressRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}

func (u *AddressUsecase) Update(ctx context.Context, userID int64, addressID int64, in AddressInput) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if addressID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := validateAddressInput(in); err != nil {
		return err
	}

	err := u.addressRepo.Update(ctx, model.Address{
		ID:          addressID,
		UserID:      userID,
		AddressLine: in.AddressLine,
		City:        in.City,
		State:       in.State,
		Pincode:     in.Pincode,
		Country:     in.Country,
		Mobile:      in.Mobile,
	})
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// Disable は住所を無効化する（注文が参照しているので物理削除しない）。
func (u *AddressUsecase) Disable(ctx context.Context, userID int64, addressID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if addressID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	err := u.addressRepo.Disable(ctx, addressID, userID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
