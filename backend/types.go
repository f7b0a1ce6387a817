package backend

// TeamLink is the payload returned by the magic link endpoint.
type TeamLink struct {
	MagicLinkURL     string `json:"magic_link_url"`
	ExpiresInSeconds int    `json:"expires_in_seconds"`
	Message          string `json:"message"`
}

// GuildRole is the role shape pushed to the backend on bulk and incremental
// role syncs.
type GuildRole struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Color       int    `json:"color"`
	Position    int    `json:"position"`
	Managed     bool   `json:"managed"`
	Mentionable bool   `json:"mentionable"`
}

// RoleSyncResult summarizes a bulk role sync.
type RoleSyncResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Deleted int `json:"deleted"`
	Total   int `json:"total"`
}

// UserRolesResult summarizes a single member's role sync. Roles maps role id
// to role name.
type UserRolesResult struct {
	RolesSynced int               `json:"roles_synced"`
	Roles       map[string]string `json:"roles"`
}

// GuildMember is the member shape pushed on a bulk member sync.
type GuildMember struct {
	DiscordID   string   `json:"discord_id"`
	Username    string   `json:"username"`
	DisplayName string   `json:"display_name"`
	Nickname    string   `json:"nickname"`
	AvatarHash  string   `json:"avatar_hash"`
	Roles       []string `json:"roles"`
	JoinedAt    string   `json:"joined_at,omitempty"`
	IsBot       bool     `json:"is_bot"`
}

// MemberSyncResult summarizes a bulk member sync.
type MemberSyncResult struct {
	Created     int `json:"created"`
	Updated     int `json:"updated"`
	Rejoined    int `json:"rejoined"`
	Left        int `json:"left"`
	Linked      int `json:"linked"`
	TotalActive int `json:"total_active"`
}

// TeammateMatch is a single hit from the teammate search endpoint.
type TeammateMatch struct {
	Zwid int64  `json:"zwid"`
	Name string `json:"name"`
	Flag string `json:"flag"`
}

// Account holds the linked website account section of a profile.
type Account struct {
	DiscordUsername string `json:"discord_username"`
	DiscordNickname string `json:"discord_nickname"`
	ZwidVerified    bool   `json:"zwid_verified"`
}

// ZwiftPowerStats holds the ZwiftPower section of a profile. Keys the
// backend omits are left at their zero value.
type ZwiftPowerStats struct {
	Name       string  `json:"name"`
	Div        int     `json:"div"`
	Rank       float64 `json:"r"`
	FTP        int     `json:"ftp"`
	Weight     float64 `json:"weight"`
	H15Watts   int     `json:"h_15_watts"`
	H15WKg     float64 `json:"h_15_wkg"`
	H1200Watts int     `json:"h_1200_watts"`
	H1200WKg   float64 `json:"h_1200_wkg"`
	DistanceKm float64 `json:"distance_km"`
	ClimbedM   int     `json:"climbed_m"`
	TimeHours  float64 `json:"time_hours"`
}

// ZwiftRacingStats holds the Zwift Racing section of a profile.
type ZwiftRacingStats struct {
	Name                string  `json:"name"`
	RaceCurrentCategory string  `json:"race_current_category"`
	RaceCurrentRating   float64 `json:"race_current_rating"`
	PowerCP             float64 `json:"power_cp"`
	RaceMax30Rating     float64 `json:"race_max30_rating"`
	RaceMax30Category   string  `json:"race_max30_category"`
	RaceMax90Rating     float64 `json:"race_max90_rating"`
	RaceMax90Category   string  `json:"race_max90_category"`
	RaceFinishes        int     `json:"race_finishes"`
	RaceWins            int     `json:"race_wins"`
	RacePodiums         int     `json:"race_podiums"`
	PhenotypeValue      string  `json:"phenotype_value"`
	PowerWKg5           float64 `json:"power_wkg5"`
	PowerWKg15          float64 `json:"power_wkg15"`
	PowerWKg60          float64 `json:"power_wkg60"`
	PowerWKg300         float64 `json:"power_wkg300"`
	PowerWKg1200        float64 `json:"power_wkg1200"`
}

// Verification is a single race-readiness verification record.
type Verification struct {
	Verified      bool `json:"verified"`
	IsExpired     bool `json:"is_expired"`
	DaysRemaining *int `json:"days_remaining"`
}

// Profile is a rider's combined profile as returned by the profile
// endpoints.
type Profile struct {
	Zwid         int64                   `json:"zwid"`
	Account      *Account                `json:"account"`
	ZwiftPower   *ZwiftPowerStats        `json:"zwiftpower"`
	ZwiftRacing  *ZwiftRacingStats       `json:"zwiftracing"`
	Verification map[string]Verification `json:"verification"`
}
