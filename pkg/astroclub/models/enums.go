package models

// Role is a user's system-wide role
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
	RoleGuest  Role = "GUEST"
	RoleUser   Role = "USER"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleMember, RoleGuest, RoleUser:
		return true
	}
	return false
}

// IsAdmin reports whether r grants administrative access
func (r Role) IsAdmin() bool {
	switch r {
	case RoleAdmin:
		return true
	case RoleMember, RoleGuest, RoleUser:
		return false
	}
	return false
}

// GroupStatus is the lifecycle state of a group
type GroupStatus string

const (
	GroupStatusActive   GroupStatus = "ACTIVE"
	GroupStatusInactive GroupStatus = "INACTIVE"
	GroupStatusArchived GroupStatus = "ARCHIVED"
	GroupStatusPending  GroupStatus = "PENDING"
)

func (s GroupStatus) Valid() bool {
	switch s {
	case GroupStatusActive, GroupStatusInactive, GroupStatusArchived, GroupStatusPending:
		return true
	}
	return false
}

// GroupRole is a member's role within a single group
type GroupRole string

const (
	GroupRoleAdmin  GroupRole = "ADMIN"
	GroupRoleMember GroupRole = "MEMBER"
)

func (r GroupRole) Valid() bool {
	switch r {
	case GroupRoleAdmin, GroupRoleMember:
		return true
	}
	return false
}

type MemberStatus string

const (
	MemberStatusOnline  MemberStatus = "ONLINE"
	MemberStatusOffline MemberStatus = "OFFLINE"
	MemberStatusAway    MemberStatus = "AWAY"
	MemberStatusBusy    MemberStatus = "BUSY"
)

func (s MemberStatus) Valid() bool {
	switch s {
	case MemberStatusOnline, MemberStatusOffline, MemberStatusAway, MemberStatusBusy:
		return true
	}
	return false
}

// Category classifies articles
type Category string

const (
	CategorySolarSystem   Category = "SOLAR_SYSTEM"
	CategoryGalaxies      Category = "GALAXIES"
	CategoryStars         Category = "STARS"
	CategoryExoplanets    Category = "EXOPLANETS"
	CategoryBlackHoles    Category = "BLACK_HOLES"
	CategoryCosmology     Category = "COSMOLOGY"
	CategoryAstrobiology  Category = "ASTROBIOLOGY"
	CategoryTelescopes    Category = "TELESCOPES"
	CategorySpaceMissions Category = "SPACE_MISSIONS"
)

func (c Category) Valid() bool {
	switch c {
	case CategorySolarSystem, CategoryGalaxies, CategoryStars, CategoryExoplanets,
		CategoryBlackHoles, CategoryCosmology, CategoryAstrobiology, CategoryTelescopes,
		CategorySpaceMissions:
		return true
	}
	return false
}

// ArticleStatus is the publication state of an article
type ArticleStatus string

const (
	ArticleStatusDraft     ArticleStatus = "DRAFT"
	ArticleStatusPublished ArticleStatus = "PUBLISHED"
)

func (s ArticleStatus) Valid() bool {
	switch s {
	case ArticleStatusDraft, ArticleStatusPublished:
		return true
	}
	return false
}

// ImageCategory says which entity an image belongs to
type ImageCategory string

const (
	ImageCategoryGroup       ImageCategory = "GROUP"
	ImageCategoryObservation ImageCategory = "OBSERVATION"
	ImageCategoryEvent       ImageCategory = "EVENT"
	ImageCategoryOther       ImageCategory = "OTHER"
)

func (c ImageCategory) Valid() bool {
	switch c {
	case ImageCategoryGroup, ImageCategoryObservation, ImageCategoryEvent, ImageCategoryOther:
		return true
	}
	return false
}

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "PENDING"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}
