package sqlinline

const QInsertMembership = `--sql a417ceb7-6944-448b-8990-6429105f4c49
insert into memberships (id, plan_name, price, description, validity_days, allowed_service_ids)
values (gen_random_uuid(), $1, $2, $3, $4, $5::jsonb)
returning id, created_at;
`

const QSelectMembershipByID = `--sql 29d60072-97ed-434d-9a9a-934ed3cdbd5b
select id, plan_name, price, description, validity_days, allowed_service_ids, created_at
from memberships
where id = $1::uuid
limit 1;
`

const QListMemberships = `--sql 699b19da-4e11-40a9-9927-601962415023
select id, plan_name, price, description, validity_days, allowed_service_ids, created_at
from memberships
order by validity_days;
`

const QSelectBenefitMatrix = `--sql a48d8c2a-4c2e-4864-b018-409b501c224c
select plans, benefits, updated_at
from membership_benefits
where singleton
limit 1;
`

const QUpsertBenefitMatrix = `--sql 6cfbdaf2-d7a0-49ce-b0dd-48c0a3bd58fd
insert into membership_benefits (id, singleton, plans, benefits, updated_at)
values (gen_random_uuid(), true, $1::jsonb, $2::jsonb, now())
on conflict (singleton) do update set
    plans = excluded.plans,
    benefits = excluded.benefits,
    updated_at = now()
returning plans, benefits, updated_at;
`
