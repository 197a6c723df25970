package account

import (
	"aquaflow/authority"
	"aquaflow/bizerror"
	"aquaflow/domain"
	"aquaflow/idgen"
	"aquaflow/notification"
	"aquaflow/persistence"
	"aquaflow/session"
	"errors"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/patrickmn/go-cache"
	"github.com/sony/sonyflake"
	"golang.org/x/crypto/bcrypt"
)

var (
	userIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	RegisterUserFunc       = RegisterUser
	LoginFunc              = Login
	ConfirmUserFunc        = ConfirmUser
	ValidateTokenFunc      = ValidateToken
	UpdatePasswordFunc     = UpdatePassword
	ResetPasswordFunc      = ResetPassword
	DeactivateUserFunc     = DeactivateUser
	DetailUserFunc         = DetailUser
	QueryUsersFunc         = QueryUsers
	QueryDeliveryUsersFunc = QueryDeliveryUsers
)

func hashPassword(raw string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func checkPassword(raw, stored string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(raw)) == nil
}

func RegisterUser(c *domain.UserRegistration) (*domain.UserInfo, error) {
	var user domain.User
	var token *domain.Token

	err1 := persistence.ActiveDataSourceManager.GormDB().Transaction(func(tx *gorm.DB) error {
		existed := domain.User{}
		err := tx.Where(&domain.User{Email: c.Email}).First(&existed).Error
		if err == nil {
			return bizerror.ErrEmailExisted
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		role, err := authority.FindRoleByName(tx, domain.RoleUser)
		if err != nil {
			return err
		}
		secret, err := hashPassword(c.Password)
		if err != nil {
			return err
		}

		user = domain.User{ID: idgen.NextID(userIdWorker), Name: c.Name, Lastname: c.Lastname,
			Email: c.Email, Secret: secret, Confirmed: false, Active: true,
			RoleID: role.ID, CreateTime: types.CurrentTimestamp()}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		token, err = createToken(tx, user.ID)
		return err
	})
	if err1 != nil {
		return nil, err1
	}

	notification.EnqueueFunc(notification.Notification{Kind: notification.KindConfirmation,
		To: user.Email, Name: user.Name, Token: token.Token})

	return &domain.UserInfo{ID: user.ID, Name: user.Name, Lastname: user.Lastname,
		Email: user.Email, RoleID: user.RoleID, Active: user.Active}, nil
}

func Login(c *domain.LoginRequest) (*domain.LoginResult, error) {
	db := persistence.ActiveDataSourceManager.GormDB()

	user := domain.User{}
	if err := db.Where(&domain.User{Email: c.Email}).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}

	if !user.Confirmed {
		token, err := createToken(db, user.ID)
		if err != nil {
			return nil, err
		}
		notification.EnqueueFunc(notification.Notification{Kind: notification.KindConfirmation,
			To: user.Email, Name: user.Name, Token: token.Token})
		return nil, bizerror.ErrUserNotConfirmed
	}

	if !checkPassword(c.Password, user.Secret) {
		return nil, bizerror.ErrInvalidPassword
	}

	role := domain.Role{}
	if err := db.Where(&domain.Role{ID: user.RoleID}).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}
	actions, err := authority.LoadRoleActionNames(db, user.RoleID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	identity := session.Identity{ID: user.ID, Name: user.Name, Lastname: user.Lastname, Email: user.Email}
	signed, err := session.SignToken(identity, user.Confirmed, now)
	if err != nil {
		return nil, err
	}
	session.TokenCache.Set(signed, &session.Context{Token: signed, Identity: identity, SigningTime: now},
		cache.DefaultExpiration)

	return &domain.LoginResult{Token: signed, User: domain.UserSecurityInfo{
		ID: user.ID, Name: user.Name, Lastname: user.Lastname, Email: user.Email,
		Role: role.Name, Actions: actions}}, nil
}

func ConfirmUser(token string) error {
	return persistence.ActiveDataSourceManager.GormDB().Transaction(func(tx *gorm.DB) error {
		t, err := consumeToken(tx, token)
		if err != nil {
			return err
		}
		return tx.Model(&domain.User{ID: t.UserID}).Update("confirmed", true).Error
	})
}

func ValidateToken(token string) error {
	_, err := findValidToken(persistence.ActiveDataSourceManager.GormDB(), token)
	return err
}

func UpdatePassword(token, password string) error {
	return persistence.ActiveDataSourceManager.GormDB().Transaction(func(tx *gorm.DB) error {
		t, err := consumeToken(tx, token)
		if err != nil {
			return err
		}
		secret, err := hashPassword(password)
		if err != nil {
			return err
		}
		return tx.Model(&domain.User{ID: t.UserID}).Update("secret", secret).Error
	})
}

func ResetPassword(email string) error {
	db := persistence.ActiveDataSourceManager.GormDB()

	user := domain.User{}
	if err := db.Where(&domain.User{Email: email}).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return bizerror.ErrEmailUnknown
		}
		return err
	}

	token, err := createToken(db, user.ID)
	if err != nil {
		return err
	}
	notification.EnqueueFunc(notification.Notification{Kind: notification.KindPasswordReset,
		To: user.Email, Name: user.Name, Token: token.Token})
	return nil
}

// DeactivateUser never removes rows: Address and Order children stay put.
func DeactivateUser(id types.ID, sec *session.Context) error {
	if err := authority.CheckPermission(sec, authority.ActionDeleteUsers); err != nil {
		return err
	}

	db := persistence.ActiveDataSourceManager.GormDB()
	user := domain.User{}
	if err := db.Where(&domain.User{ID: id}).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return bizerror.ErrNotFound
		}
		return err
	}
	return db.Model(&domain.User{ID: id}).Update("active", false).Error
}

func DetailUser(id types.ID, sec *session.Context) (*domain.UserInfo, error) {
	if err := authority.CheckPermission(sec, authority.ActionGetUsers); err != nil {
		return nil, err
	}

	db := persistence.ActiveDataSourceManager.GormDB()
	user := domain.User{}
	if err := db.Where(&domain.User{ID: id}).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}
	role := domain.Role{}
	if err := db.Where(&domain.Role{ID: user.RoleID}).First(&role).Error; err != nil &&
		!errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return &domain.UserInfo{ID: user.ID, Name: user.Name, Lastname: user.Lastname,
		Email: user.Email, RoleID: user.RoleID, RoleName: role.Name, Active: user.Active}, nil
}

func QueryUsers(q *domain.UserQuery, sec *session.Context) (*domain.UserPage, error) {
	if err := authority.CheckPermission(sec, authority.ActionGetUsers); err != nil {
		return nil, err
	}

	page, limit := q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	db := persistence.ActiveDataSourceManager.GormDB().Model(&domain.User{})
	if q.RoleID != 0 {
		db = db.Where("role_id = ?", q.RoleID)
	}

	var total int
	if err := db.Count(&total).Error; err != nil {
		return nil, err
	}
	users := []domain.User{}
	if err := db.Order("ID ASC").Offset((page - 1) * limit).Limit(limit).Find(&users).Error; err != nil {
		return nil, err
	}

	roleNames, err := loadRoleNames(users)
	if err != nil {
		return nil, err
	}
	infos := make([]domain.UserInfo, 0, len(users))
	for _, u := range users {
		infos = append(infos, domain.UserInfo{ID: u.ID, Name: u.Name, Lastname: u.Lastname,
			Email: u.Email, RoleID: u.RoleID, RoleName: roleNames[u.RoleID], Active: u.Active})
	}
	return &domain.UserPage{Users: infos, TotalPages: (total + limit - 1) / limit}, nil
}

func QueryDeliveryUsers(sec *session.Context) ([]domain.UserBrief, error) {
	if err := authority.CheckPermission(sec, authority.ActionGetDeliveries); err != nil {
		return nil, err
	}

	db := persistence.ActiveDataSourceManager.GormDB()
	role, err := authority.FindRoleByName(db, domain.RoleDelivery)
	if err != nil {
		return nil, err
	}

	users := []domain.User{}
	if err := db.Where("role_id = ?", role.ID).Order("ID ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	briefs := make([]domain.UserBrief, 0, len(users))
	for _, u := range users {
		briefs = append(briefs, domain.UserBrief{ID: u.ID, Name: u.Name, Lastname: u.Lastname})
	}
	return briefs, nil
}

func loadRoleNames(users []domain.User) (map[types.ID]string, error) {
	ids := make([]types.ID, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.RoleID)
	}
	names := map[types.ID]string{}
	if len(ids) == 0 {
		return names, nil
	}
	roles := []domain.Role{}
	if err := persistence.ActiveDataSourceManager.GormDB().
		Where("id in (?)", ids).Find(&roles).Error; err != nil {
		return nil, err
	}
	for _, r := range roles {
		names[r.ID] = r.Name
	}
	return names, nil
}
