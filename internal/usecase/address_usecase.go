package usecase

import (
	"context"
	"net/http"
	"strings"

	"storefront/internal/domain/model"
	"storefront/internal/repository"

	"go.uber.org/zap"
)

type AddressCreateInput struct {
	FullName      string
	PhoneNumber   string
	StreetAddress string
	City          string
	PostalCode    string
	Country       string
	AddressNotes  *string
}

// 注文に使う住所の最小限の窓口（一覧と登録だけ）
type AddressUsecase struct {
	addresses repository.AddressRepository
	log       *zap.Logger
}

func NewAddressUsecase(addresses repository.AddressRepository, log *zap.Logger) *AddressUsecase {
	return &AddressUsecase{addresses: addresses, log: log}
}

func (u *AddressUsecase) List(ctx context.Context, userID int64) ([]model.Address, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	list, err := u.addresses.ListByUserID(ctx, userID)
	if err != nil {
		return nil, dbError(u.log, "list addresses", err)
	}
	return list, nil
}

func (u *AddressUsecase) Create(ctx context.Context, userID int64, in AddressCreateInput) (model.Address, error) {
	if userID <= 0 {
		return model.Address{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	a := model.Address{
		UserID:        userID,
		FullName:      strings.TrimSpace(in.FullName),
		PhoneNumber:   strings.TrimSpace(in.PhoneNumber),
		StreetAddress: strings.TrimSpace(in.StreetAddress),
		City:          strings.TrimSpace(in.City),
		PostalCode:    strings.TrimSpace(in.PostalCode),
		Country:       strings.TrimSpace(in.Country),
		AddressNotes:  normalizeNotes(in.AddressNotes),
	}

	//入力チェック
	if a.FullName == "" || a.PhoneNumber == "" || a.StreetAddress == "" || a.City == "" || a.PostalCode == "" || a.Country == "" {
		return model.Address{}, NewHTTPError(http.StatusBadRequest, "invalid address")
	}

	created, err := u.addresses.Create(ctx, a)
	if err != nil {
		return model.Address{}, dbError(u.log, "create address", err)
	}
	return created, nil
}
