package handler

import (
	"time"

	"github.com/minitoco/minitoco/internal/domain"
	"github.com/minitoco/minitoco/internal/service"
)

// UserDTO is the JSON representation of a user.
type UserDTO struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
		UpdatedAt: u.UpdatedAt.Format(time.RFC3339),
	}
}

// BalanceDTO is the JSON representation of a balance. Value is a decimal
// string so no precision is lost in serialization.
type BalanceDTO struct {
	Value     string `json:"value"`
	UpdatedAt string `json:"updated_at"`
}

func toBalanceDTO(b *domain.Balance) BalanceDTO {
	return BalanceDTO{
		Value:     b.Value.String(),
		UpdatedAt: b.UpdatedAt.Format(time.RFC3339),
	}
}

// UserDetailDTO is the JSON representation of a user with their balance.
type UserDetailDTO struct {
	User    UserDTO    `json:"user"`
	Balance BalanceDTO `json:"balance"`
}

func toUserDetailDTO(d *domain.UserDetail) UserDetailDTO {
	return UserDetailDTO{
		User:    toUserDTO(&d.User),
		Balance: toBalanceDTO(&d.Balance),
	}
}

// TransactionDTO is the JSON representation of a transaction. Amount is a
// decimal string so no precision is lost in serialization.
type TransactionDTO struct {
	ID            string `json:"id"`
	Amount        string `json:"amount"`
	FromUserID    string `json:"from_user_id"`
	FromUserEmail string `json:"from_user_email"`
	ToUserID      string `json:"to_user_id"`
	ToUserEmail   string `json:"to_user_email"`
	Date          string `json:"date"`
}

func toTransactionDTO(t *domain.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:            t.ID,
		Amount:        t.Amount.String(),
		FromUserID:    t.FromUserID,
		FromUserEmail: t.FromUserEmail,
		ToUserID:      t.ToUserID,
		ToUserEmail:   t.ToUserEmail,
		Date:          t.CreatedAt.Format(time.RFC3339),
	}
}

func toTransactionDTOs(transactions []domain.Transaction) []TransactionDTO {
	dtos := make([]TransactionDTO, len(transactions))
	for i := range transactions {
		dtos[i] = toTransactionDTO(&transactions[i])
	}
	return dtos
}

// TransferResultDTO is the JSON representation of a completed transfer.
type TransferResultDTO struct {
	Transaction  TransactionDTO `json:"transaction"`
	FinalBalance string         `json:"final_balance"`
}

func toTransferResultDTO(r *domain.TransferResult) TransferResultDTO {
	return TransferResultDTO{
		Transaction:  toTransactionDTO(&r.Transaction),
		FinalBalance: r.FinalBalance.String(),
	}
}

// TokenDataDTO is the JSON representation of an issued token pair.
type TokenDataDTO struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

func toTokenDataDTO(t *service.TokenData) TokenDataDTO {
	return TokenDataDTO{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
		ExpiresIn:    t.ExpiresIn,
	}
}
